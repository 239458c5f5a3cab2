package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("MANAGER_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.ManagerPIN != "" {
		t.Fatalf("expected empty MANAGER_PIN when unset, got %q", cfg.ManagerPIN)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHIFT_DETAIL_TTL_SECONDS", "")
	t.Setenv("REQUIRE_ATTENDANCE_FOR_SHIFT", "")
	t.Setenv("DEFAULT_BUSINESS_ID", "")

	cfg := Load()
	if cfg.ShiftDetailTTLSeconds != 30 {
		t.Fatalf("expected default shift detail TTL 30, got %d", cfg.ShiftDetailTTLSeconds)
	}
	if cfg.RequireAttendanceForShift {
		t.Fatalf("expected attendance gate off by default")
	}
	if cfg.BusinessID != "main-business" {
		t.Fatalf("expected default business id, got %q", cfg.BusinessID)
	}
}

func TestLoadParsesAttendanceFlag(t *testing.T) {
	t.Setenv("REQUIRE_ATTENDANCE_FOR_SHIFT", "true")

	cfg := Load()
	if !cfg.RequireAttendanceForShift {
		t.Fatalf("expected attendance gate enabled")
	}

	t.Setenv("REQUIRE_ATTENDANCE_FOR_SHIFT", "not-a-bool")
	cfg = Load()
	if cfg.RequireAttendanceForShift {
		t.Fatalf("expected malformed flag to read as false")
	}
}

func TestLoadFallsBackOnBadTTL(t *testing.T) {
	t.Setenv("SHIFT_DETAIL_TTL_SECONDS", "-5")

	cfg := Load()
	if cfg.ShiftDetailTTLSeconds != 30 {
		t.Fatalf("expected fallback TTL 30 on invalid value, got %d", cfg.ShiftDetailTTLSeconds)
	}
}
