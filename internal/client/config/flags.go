package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/labportal/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns; everything else in args
// is left for other parsers.
//
//	-a string   users API base URL
//	-r string   results API base URL
//	-s string   storage DSN
//	-mock       use the mock backend
func parseFlags(cfg *Config, args []string) error {
	spec := flagx.Spec{Value: []string{"a", "r", "s"}, Bool: []string{"mock"}}

	fs := flag.NewFlagSet("labportal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.UsersBaseURL, "a", cfg.UsersBaseURL, "users API base URL")
	fs.StringVar(&cfg.ResultsBaseURL, "r", cfg.ResultsBaseURL, "results API base URL")
	fs.StringVar(&cfg.StorageDSN, "s", cfg.StorageDSN, "storage DSN")
	fs.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "use the local mock backend")

	return fs.Parse(spec.Filter(args))
}
