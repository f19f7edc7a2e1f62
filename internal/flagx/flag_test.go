package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.json", "-a", "http://localhost:8081/api"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "long flag with equals",
			args:    []string{"--config=alt.json", "-a", "x"},
			allowed: []string{"-c", "-config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags and positionals ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-notvalue"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "equals value may start with dashes",
			args:    []string{"--config=--weird.json"},
			allowed: []string{"config"},
			want:    []string{"--config=--weird.json"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-s", "one.db", "-a", "u", "-s", "two.db"},
			allowed: []string{"-s"},
			want:    []string{"-s", "one.db", "-s", "two.db"},
		},
		{
			name:    "empty args",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestSpec_Filter_BoolFlags(t *testing.T) {
	spec := Spec{Value: []string{"a"}, Bool: []string{"mock"}}

	got := spec.Filter([]string{"-mock", "positional", "-a", "http://api", "-other"})
	assert.Equal(t, []string{"-mock", "-a", "http://api"}, got)

	got = spec.Filter([]string{"--mock=false", "-a=http://api"})
	assert.Equal(t, []string{"--mock=false", "-a=http://api"}, got)
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/path/short.json", ConfigPath([]string{"-c", "/path/short.json"}))
	assert.Equal(t, "/path/long.json", ConfigPath([]string{"-a", "x", "-config", "/path/long.json"}))
	assert.Empty(t, ConfigPath([]string{"-x", "1", "-y", "2"}))
	assert.Equal(t, "/path/2.json", ConfigPath([]string{"-c", "/path/1.json", "-config=/path/2.json"}))
}
