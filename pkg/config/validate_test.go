package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDefaultsPass(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("default configuration should validate, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Facts.Backend = "postgres"
	cfg.Storage.RetentionDays = 0
	cfg.Scheduler.CycleSchedule = "not a cron"
	cfg.Telemetry.Logging.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("collected %d errors, want 4: %v", len(verr.Errors), verr)
	}
}

func TestValidateFieldPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "dynamo"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "storage.backend") {
		t.Errorf("error should name the field path, got %q", err.Error())
	}
}

func TestValidateCronSpecShape(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"0 * * * *", false},
		{"*/15 2-6 * * 1", false},
		{"", true},
		{"0 * * *", true},
		{"0 * * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := validateCronSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCronSpec(%q) = %v, wantErr=%v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMetricsDisabledSkipsAddressCheck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Telemetry.Metrics.ListenAddress = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled metrics should not require an address, got %v", err)
	}
}
