// Package mockdata is the local data collaborator used in mock mode. It
// keeps one JSON array per entity collection in durable storage and seeds
// every missing collection with the demo records of seed.yaml.
package mockdata

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/dmitrijs2005/labportal/internal/client/storage"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Storage keys of the collections.
const (
	UsersKey         = "usuarios_mock"
	LaboratoriesKey  = "laboratorios_mock"
	AnalysisTypesKey = "analisis_mock"
	AppointmentsKey  = "citas_mock"
	ResultsKey       = "resultados_mock"
)

// Keys lists every collection key.
var Keys = []string{UsersKey, LaboratoriesKey, AnalysisTypesKey, AppointmentsKey, ResultsKey}

//go:embed seed.yaml
var seedYAML []byte

type seedUser struct {
	ID        int64        `yaml:"id"`
	FirstName string       `yaml:"first_name"`
	LastName  string       `yaml:"last_name"`
	Email     string       `yaml:"email"`
	Role      session.Role `yaml:"role"`
}

type seedFile struct {
	Password      string         `yaml:"password"`
	Created       time.Time      `yaml:"created"`
	Users         []seedUser     `yaml:"users"`
	Laboratories  []Laboratory   `yaml:"laboratories"`
	AnalysisTypes []AnalysisType `yaml:"analysis_types"`
	Appointments  []Appointment  `yaml:"appointments"`
	Results       []Result       `yaml:"results"`
}

// DemoPassword is the password of every seeded user.
func DemoPassword() string {
	s, err := loadSeed()
	if err != nil {
		return ""
	}
	return s.Password
}

func loadSeed() (*seedFile, error) {
	var s seedFile
	if err := yaml.Unmarshal(seedYAML, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &s, nil
}

// NormalizeEmail folds an email for comparison: Unicode NFKC, trimmed and
// lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(email)))
}

// Directory reads and writes the mock collections.
type Directory struct {
	kv       storage.Store
	hashCost int

	// mu serializes read-modify-write cycles on a collection.
	mu sync.Mutex
}

// NewDirectory returns a Directory over kv. hashCost is the bcrypt cost used
// for seeded passwords; values outside bcrypt's range fall back to the
// default cost.
func NewDirectory(kv storage.Store, hashCost int) *Directory {
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		hashCost = bcrypt.DefaultCost
	}
	return &Directory{kv: kv, hashCost: hashCost}
}

// HashCost is the bcrypt cost used for new passwords.
func (d *Directory) HashCost() int {
	return d.hashCost
}

// Init seeds every collection that is not yet in storage.
func (d *Directory) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	missing := make(map[string]bool, len(Keys))
	for _, k := range Keys {
		raw, err := d.kv.Get(ctx, k)
		if err != nil {
			return err
		}
		if raw == nil {
			missing[k] = true
		}
	}
	return d.seed(ctx, missing)
}

// Reset overwrites every collection with its seed.
func (d *Directory) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	all := make(map[string]bool, len(Keys))
	for _, k := range Keys {
		all[k] = true
	}
	if err := d.seed(ctx, all); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// seed writes the seed of every collection in keys in a single batch, so a
// failure leaves storage as it was.
func (d *Directory) seed(ctx context.Context, keys map[string]bool) error {
	if len(keys) == 0 {
		return nil
	}
	seed, err := loadSeed()
	if err != nil {
		return err
	}

	created := seed.Created
	batch := make(map[string][]byte, len(keys))

	if keys[UsersKey] {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), d.hashCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		users := make([]session.User, 0, len(seed.Users))
		for _, u := range seed.Users {
			users = append(users, session.User{
				ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email,
				Password: string(hash), Role: u.Role, Active: true, CreatedAt: &created,
			})
		}
		if err := encode(batch, UsersKey, users); err != nil {
			return err
		}
	}

	if keys[LaboratoriesKey] {
		for i := range seed.Laboratories {
			seed.Laboratories[i].Active = true
			seed.Laboratories[i].CreatedAt = &created
		}
		if err := encode(batch, LaboratoriesKey, seed.Laboratories); err != nil {
			return err
		}
	}

	if keys[AnalysisTypesKey] {
		for i := range seed.AnalysisTypes {
			seed.AnalysisTypes[i].Active = true
		}
		if err := encode(batch, AnalysisTypesKey, seed.AnalysisTypes); err != nil {
			return err
		}
	}

	if keys[AppointmentsKey] {
		for i := range seed.Appointments {
			seed.Appointments[i].CreatedAt = &created
		}
		if err := encode(batch, AppointmentsKey, seed.Appointments); err != nil {
			return err
		}
	}

	if keys[ResultsKey] {
		patients := make(map[int64]int64, len(seed.Appointments))
		for _, a := range seed.Appointments {
			patients[a.ID] = a.PatientID
		}
		for i := range seed.Results {
			seed.Results[i].PatientID = patients[seed.Results[i].AppointmentID]
			seed.Results[i].CreatedAt = &created
		}
		if err := encode(batch, ResultsKey, seed.Results); err != nil {
			return err
		}
	}

	return d.kv.SetMany(ctx, batch)
}

func encode[T any](batch map[string][]byte, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	batch[key] = raw
	return nil
}

func load[T any](ctx context.Context, kv storage.Store, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func save[T any](ctx context.Context, kv storage.Store, key string, items []T) error {
	batch := make(map[string][]byte, 1)
	if err := encode(batch, key, items); err != nil {
		return err
	}
	return kv.Set(ctx, key, batch[key])
}

// Users returns the stored users, password hashes included.
func (d *Directory) Users(ctx context.Context) ([]session.User, error) {
	return load[session.User](ctx, d.kv, UsersKey)
}

// UpdateUsers runs fn over the users collection and saves what it returns.
// Nothing is written when fn fails.
func (d *Directory) UpdateUsers(ctx context.Context, fn func([]session.User) ([]session.User, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := load[session.User](ctx, d.kv, UsersKey)
	if err != nil {
		return err
	}
	users, err = fn(users)
	if err != nil {
		return err
	}
	return save(ctx, d.kv, UsersKey, users)
}

// FindUserByEmail returns the user with a matching normalized email.
func (d *Directory) FindUserByEmail(ctx context.Context, email string) (*session.User, error) {
	users, err := d.Users(ctx)
	if err != nil {
		return nil, err
	}
	want := NormalizeEmail(email)
	for i := range users {
		if NormalizeEmail(users[i].Email) == want {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindUserByID returns the user with id, or nil.
func (d *Directory) FindUserByID(ctx context.Context, id int64) (*session.User, error) {
	users, err := d.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Laboratories returns the partner laboratories.
func (d *Directory) Laboratories(ctx context.Context) ([]Laboratory, error) {
	return load[Laboratory](ctx, d.kv, LaboratoriesKey)
}

// AnalysisTypes returns the orderable analyses.
func (d *Directory) AnalysisTypes(ctx context.Context) ([]AnalysisType, error) {
	return load[AnalysisType](ctx, d.kv, AnalysisTypesKey)
}

// Appointments returns every booking.
func (d *Directory) Appointments(ctx context.Context) ([]Appointment, error) {
	return load[Appointment](ctx, d.kv, AppointmentsKey)
}

func (d *Directory) Results(ctx context.Context) ([]Result, error) {
	return load[Result](ctx, d.kv, ResultsKey)
}

// NextUserID is one past the highest id in users, or 1 when empty.
func NextUserID(users []session.User) int64 {
	var highest int64
	for _, u := range users {
		if u.ID > highest {
			highest = u.ID
		}
	}
	return highest + 1
}
