package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	server := ServerConfig{BaseURI: "https://kroeg.test"}

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Server: server},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Database: DatabaseConfig{Backend: "mongodb"}, Server: server},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "sqlite without path is incomplete",
			config:  Config{Database: DatabaseConfig{Backend: BackendSQLite}, Server: server},
			wantErr: ErrDatabaseIncomplete,
		},
		{
			name:    "postgresql without server is incomplete",
			config:  Config{Database: DatabaseConfig{Backend: BackendPostgreSQL, Database: "kroeg"}, Server: server},
			wantErr: ErrDatabaseIncomplete,
		},
		{
			name:    "missing base uri",
			config:  Config{Database: DatabaseConfig{Backend: BackendSQLite, Path: "/tmp/kroeg.db"}},
			wantErr: ErrBaseURIEmpty,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Database: DatabaseConfig{Backend: BackendSQLite, Path: "/tmp/kroeg.db"}, Server: server},
			wantErr: nil,
		},
		{
			name: "valid postgresql config",
			config: Config{
				Database: DatabaseConfig{Backend: BackendPostgreSQL, Server: "localhost", Username: "kroeg", Database: "kroeg"},
				Server:   server,
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
