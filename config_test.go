package tmcmc

import "testing"

func TestConfigWithDefaults(t *testing.T) {
	got := Config{}.WithDefaults()
	if got != DefaultConfig {
		t.Errorf("WithDefaults() = %+v, want %+v", got, DefaultConfig)
	}
}

func TestConfigWithDefaultsPreservesSetFields(t *testing.T) {
	cfg := Config{ThresholdCoV: 2, NumBurnIn: 50}.WithDefaults()
	if cfg.ThresholdCoV != 2 {
		t.Errorf("ThresholdCoV = %v, want 2", cfg.ThresholdCoV)
	}
	if cfg.NumBurnIn != 50 {
		t.Errorf("NumBurnIn = %v, want 50", cfg.NumBurnIn)
	}
	if cfg.NumSteps != DefaultConfig.NumSteps {
		t.Errorf("NumSteps = %v, want default %v", cfg.NumSteps, DefaultConfig.NumSteps)
	}
}

func TestConfigValidateRejectsEachField(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"ThresholdCoV", Config{ThresholdCoV: 0, NumSteps: 1, ThinningFactor: 1, AdaptFrequency: 1}},
		{"NumSteps", Config{ThresholdCoV: 1, NumSteps: 0, ThinningFactor: 1, AdaptFrequency: 1}},
		{"ThinningFactor", Config{ThresholdCoV: 1, NumSteps: 1, ThinningFactor: 0, AdaptFrequency: 1}},
		{"AdaptFrequency", Config{ThresholdCoV: 1, NumSteps: 1, ThinningFactor: 1, AdaptFrequency: 0}},
		{"NumBurnIn", Config{ThresholdCoV: 1, NumSteps: 1, ThinningFactor: 1, AdaptFrequency: 1, NumBurnIn: -1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error for bad %s", c.name)
			}
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("err = %T, want *ConfigError", err)
			}
			if cfgErr.Field != c.name {
				t.Errorf("Field = %q, want %q", cfgErr.Field, c.name)
			}
		})
	}
}

func TestConfigValidateAcceptsDefaults(t *testing.T) {
	if err := DefaultConfig.Validate(); err != nil {
		t.Errorf("DefaultConfig.Validate() = %v, want nil", err)
	}
}
