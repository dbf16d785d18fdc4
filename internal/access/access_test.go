package access

import (
	"errors"
	"testing"
)

func TestRequireBalanceWriter(t *testing.T) {
	cases := []struct {
		name   string
		caller Caller
		want   error
	}{
		{"no roles", Caller{ID: "1"}, ErrUnauthorized},
		{"member", Caller{ID: "1", Roles: []string{"member"}}, ErrUnauthorized},
		{"staff", Caller{ID: "1", Roles: []string{"staff"}}, nil},
		{"owner upper", Caller{ID: "1", Roles: []string{"OWNER"}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := RequireBalanceWriter(tc.caller); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDirectory(t *testing.T) {
	d := NewDirectory([]string{"100"}, []string{"200", " 100 ", ""})

	owner := d.Caller("100")
	if !owner.HasRole(RoleOwner) || !owner.HasRole(RoleStaff) {
		t.Fatalf("expected owner+staff, got %v", owner.Roles)
	}
	if !d.Caller("200").CanWriteBalances() {
		t.Fatalf("expected staff to write balances")
	}
	if d.Caller("300").CanWriteBalances() {
		t.Fatalf("unknown id must not write balances")
	}

	var nilDir *Directory
	if c := nilDir.Caller("5"); c.ID != "5" || len(c.Roles) != 0 {
		t.Fatalf("unexpected caller from nil directory: %+v", c)
	}
}
