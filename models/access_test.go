package models

import "testing"

func TestParseAccessLevel(t *testing.T) {
	tests := []struct {
		in   string
		want AccessLevel
	}{
		{"Owner", AccessOwner},
		{"Admin", AccessAdmin},
		{"Editor", AccessEditor},
		{"", AccessNone},
		{"owner", AccessNone}, // enum values are case-sensitive
		{"Superuser", AccessNone},
	}
	for _, tt := range tests {
		if got := ParseAccessLevel(tt.in); got != tt.want {
			t.Errorf("ParseAccessLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAccessLevelPredicates(t *testing.T) {
	tests := []struct {
		level     AccessLevel
		canManage bool
		canDelete bool
		isMember  bool
	}{
		{AccessOwner, true, true, true},
		{AccessAdmin, true, false, true},
		{AccessEditor, true, false, true},
		{AccessNone, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.level.CanManage(); got != tt.canManage {
			t.Errorf("%v.CanManage() = %v", tt.level, got)
		}
		if got := tt.level.CanDelete(); got != tt.canDelete {
			t.Errorf("%v.CanDelete() = %v", tt.level, got)
		}
		if got := tt.level.IsMember(); got != tt.isMember {
			t.Errorf("%v.IsMember() = %v", tt.level, got)
		}
	}
}

func TestAccessLevelScan(t *testing.T) {
	var a AccessLevel
	if err := a.Scan("Admin"); err != nil || a != AccessAdmin {
		t.Errorf("Scan(Admin) = %v, %v", a, err)
	}
	if err := a.Scan([]byte("Editor")); err != nil || a != AccessEditor {
		t.Errorf("Scan([]byte Editor) = %v, %v", a, err)
	}
	// Unknown stored values collapse to None instead of failing the row.
	if err := a.Scan("Moderator"); err != nil || a != AccessNone {
		t.Errorf("Scan(Moderator) = %v, %v", a, err)
	}
	if err := a.Scan(nil); err != nil || a != AccessNone {
		t.Errorf("Scan(nil) = %v, %v", a, err)
	}
	if err := a.Scan(42); err == nil {
		t.Error("Scan(int) succeeded, want error")
	}
}
