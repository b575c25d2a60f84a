package db

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
)

func TestOpenGormWithDialector(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
	}{
		{"ping ok", nil},
		{"ping fails", errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer conn.Close()
			mock.ExpectPing().WillReturnError(tt.pingErr)

			gdb, err := OpenGormWithDialector(mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true}))
			if tt.pingErr != nil {
				if !errors.Is(err, tt.pingErr) {
					t.Fatalf("want wrapped %v, got %v", tt.pingErr, err)
				}
			} else if err != nil || gdb == nil {
				t.Fatalf("open: db=%v err=%v", gdb, err)
			} else {
				sqlDB, _ := gdb.DB()
				if got := sqlDB.Stats().MaxOpenConnections; got != maxOpenConns {
					t.Fatalf("max open conns = %d, want %d", got, maxOpenConns)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestDialector(t *testing.T) {
	for _, d := range []string{"mysql", "postgres", "sqlite"} {
		dial, err := Dialector(d, "dsn")
		if err != nil || dial == nil || dial.Name() != d {
			t.Fatalf("%s: got (%v, %v)", d, dial, err)
		}
	}
	if _, err := Dialector("oracle", "dsn"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestOpenGorm_SQLiteMemory(t *testing.T) {
	gdb, err := OpenGorm("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("OpenGorm: %v", err)
	}
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("sqlite max open conns = %d, want 1", got)
	}
}
