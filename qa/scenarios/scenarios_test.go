package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	sc, err := Load("no_battery.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Expected.Tolerance != 1e-9 {
		t.Errorf("tolerance %v", sc.Expected.Tolerance)
	}
	if sc.Battery.ToModel().InitialFraction() != 0.5 {
		t.Errorf("initial fraction %v", sc.Battery.ToModel().InitialFraction())
	}
	if _, err := sc.Reporting(); err != nil {
		t.Errorf("reporting: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	for name, body := range map[string]string{"syntax": ":", "unnamed": "time_step_hours: 1\n"} {
		path := filepath.Join(t.TempDir(), name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
