package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	srv.RequireAuth("s3cret")

	tests := []struct {
		name     string
		addr     string
		password string
		wantErr  bool
	}{
		{"ok", srv.Addr(), "s3cret", false},
		{"wrong password", srv.Addr(), "nope", true},
		{"unresolvable host", "no-such-host.invalid:6379", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := OpenRedis(tt.addr, tt.password, 3)
			if tt.wantErr {
				if err == nil {
					_ = c.Close()
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer c.Close()
			if c.Options().DB != 3 {
				t.Fatalf("db = %d, want 3", c.Options().DB)
			}
			if err := c.Set(context.Background(), "idemp:probe", "1", 0).Err(); err != nil {
				t.Fatalf("set: %v", err)
			}
			if v, _ := srv.DB(3).Get("idemp:probe"); v != "1" {
				t.Fatalf("value not written to db 3: %q", v)
			}
		})
	}
}
