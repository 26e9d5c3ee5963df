package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.TickRate != 100000000 {
		t.Errorf("TickRate = %d, want 100000000", cfg.TickRate)
	}
	if cfg.BusRate != 1000000 {
		t.Errorf("BusRate = %d, want 1000000", cfg.BusRate)
	}
	if cfg.Mode != 0 {
		t.Errorf("Mode = %d, want 0", cfg.Mode)
	}
	if cfg.Width != 8 {
		t.Errorf("Width = %d, want 8", cfg.Width)
	}
	if cfg.WaitTicks != 1000000 {
		t.Errorf("WaitTicks = %d, want 1000000", cfg.WaitTicks)
	}
	if cfg.WatchdogTicks != 0 {
		t.Errorf("WatchdogTicks = %d, want 0 (disabled)", cfg.WatchdogTicks)
	}
	if cfg.Serial.Baud != 115200 {
		t.Errorf("Serial.Baud = %d, want 115200", cfg.Serial.Baud)
	}
}

func TestLoadConfig(t *testing.T) {
	data := []byte(`{
		"tick_rate": 50000000,
		"bus_rate": 500000,
		"mode": 3,
		"watchdog_ticks": 2000,
		"serial": {"device": "/dev/ttyUSB0", "baud": 250000}
	}`)

	cfg, err := LoadConfig(data)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.TickRate != 50000000 {
		t.Errorf("TickRate = %d, want 50000000", cfg.TickRate)
	}
	if cfg.BusRate != 500000 {
		t.Errorf("BusRate = %d, want 500000", cfg.BusRate)
	}
	if cfg.Mode != 3 {
		t.Errorf("Mode = %d, want 3", cfg.Mode)
	}
	if cfg.WatchdogTicks != 2000 {
		t.Errorf("WatchdogTicks = %d, want 2000", cfg.WatchdogTicks)
	}
	if cfg.Serial.Device != "/dev/ttyUSB0" || cfg.Serial.Baud != 250000 {
		t.Errorf("Serial = %+v, want /dev/ttyUSB0 @ 250000", cfg.Serial)
	}

	// Omitted fields still get defaults.
	if cfg.Width != 8 {
		t.Errorf("Width = %d, want default 8", cfg.Width)
	}
	if cfg.WaitTicks != 1000000 {
		t.Errorf("WaitTicks = %d, want default 1000000", cfg.WaitTicks)
	}
}

func TestLoadConfigBadJSON(t *testing.T) {
	if _, err := LoadConfig([]byte(`{"tick_rate": `)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
