package cli

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/labportal/internal/client/mockdata"
	"github.com/dmitrijs2005/labportal/internal/client/nav"
	"github.com/dmitrijs2005/labportal/internal/client/session"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// prices formats CLP amounts with Chilean digit grouping.
var prices = message.NewPrinter(language.MustParse("es-CL"))

// Labs lists the active partner laboratories.
func (a *App) Labs(ctx context.Context, _ []string) error {
	if ok, err := a.enter(nav.PathLaboratories); !ok {
		return err
	}
	if a.directory == nil {
		return errMockOnly
	}

	labs, err := a.directory.Laboratories(ctx)
	if err != nil {
		return err
	}
	for _, l := range labs {
		if !l.Active {
			continue
		}
		a.printf("%3d  %-30s %-18s %s\n", l.ID, l.Name, l.Specialty, l.Phone)
	}
	return nil
}

// Analyses lists the orderable analyses with price and turnaround.
func (a *App) Analyses(ctx context.Context, _ []string) error {
	if ok, err := a.enter(nav.PathAnalyses); !ok {
		return err
	}
	if a.directory == nil {
		return errMockOnly
	}

	types, err := a.directory.AnalysisTypes(ctx)
	if err != nil {
		return err
	}
	for _, t := range types {
		if !t.Active {
			continue
		}
		a.printf("%3d  %-26s %s  %d day(s)\n", t.ID, t.Name, prices.Sprintf("$%d", t.Price), t.DeliveryDays)
	}
	return nil
}

// Appointments lists bookings by date. Patients only see their own.
func (a *App) Appointments(ctx context.Context, _ []string) error {
	if ok, err := a.enter(nav.PathAppointments); !ok {
		return err
	}
	if a.directory == nil {
		return errMockOnly
	}
	u := a.session.CurrentSession()
	if u == nil {
		return session.ErrNoSession
	}

	all, err := a.directory.Appointments(ctx)
	if err != nil {
		return err
	}
	visible := make([]mockdata.Appointment, 0, len(all))
	for _, appt := range all {
		if u.Role == session.RolePatient && appt.PatientID != u.ID {
			continue
		}
		visible = append(visible, appt)
	}
	if len(visible) == 0 {
		a.println("No appointments.")
		return nil
	}

	sort.Slice(visible, func(i, j int) bool { return visible[i].ScheduledAt.Before(visible[j].ScheduledAt) })
	for _, appt := range visible {
		a.printf("#%d  %s  %-16s %-22s %-30s %s\n", appt.ID, appt.ScheduledAt.Format("2006-01-02 15:04"),
			appt.PatientName, appt.AnalysisName, appt.LaboratoryName, appt.Status)
	}
	return nil
}
