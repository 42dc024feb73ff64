package debug

import (
	"log/slog"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "providers", map[string]bool{"providers": true}},
		{"multiple", "providers,retry", map[string]bool{"providers": true, "retry": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " providers , retry ", map[string]bool{"providers": true, "retry": true}},
		{"uppercase normalized", "PROVIDERS,Retry", map[string]bool{"providers": true, "retry": true}},
		{"empty segments", "providers,,retry", map[string]bool{"providers": true, "retry": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(got) = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("providers,dispatch")

	if !Enabled("providers") {
		t.Error("providers should be enabled")
	}
	if !Enabled("dispatch") {
		t.Error("dispatch should be enabled")
	}
	if Enabled("telemetry") {
		t.Error("telemetry should not be enabled")
	}
	if Enabled("all") {
		t.Error("all should not be enabled (not in categories)")
	}
}

func TestEnabled_All(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("all")

	if !Enabled("providers") {
		t.Error("providers should be enabled via 'all'")
	}
	if !Enabled("anything") {
		t.Error("anything should be enabled via 'all'")
	}
}

func TestInit_ConfigCategories(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	t.Setenv("RELAIS_DEBUG", "")
	t.Setenv("RELAIS_LOG_LEVEL", "")

	Init("retry,config", "info", "text")

	if !Enabled("retry") || !Enabled("config") {
		t.Error("config-sourced categories should be enabled")
	}
	if Enabled("providers") {
		t.Error("providers should not be enabled")
	}
}

func TestInit_EnvOverridesConfigCategories(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	t.Setenv("RELAIS_DEBUG", "auth")
	t.Setenv("RELAIS_LOG_LEVEL", "")

	Init("retry", "info", "text")

	if !Enabled("auth") {
		t.Error("env category should be enabled")
	}
	if Enabled("retry") {
		t.Error("config category should lose to env")
	}
}

func TestEnabled_Empty(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("")

	if Enabled("providers") {
		t.Error("nothing should be enabled when no categories set")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"TRACE", LevelTrace},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q, want %q", got, "short")
	}
	if got := Truncate("this is a long string", 10); got != "this is a ..." {
		t.Errorf("Truncate long = %q, want %q", got, "this is a ...")
	}
}

func TestLog_DisabledCategory(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("")

	// Should not panic or produce output.
	Log("providers", "test message", "key", "value")
	Trace("providers", "trace message", "key", "value")
}
