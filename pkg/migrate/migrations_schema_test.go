package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/needlink/needlink-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestMembershipMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_pois_and_memberships.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS poi_memberships",
		"FOREIGN KEY (member_id) REFERENCES users(id) ON DELETE RESTRICT",
		"FOREIGN KEY (poi_id) REFERENCES pois(id) ON DELETE RESTRICT",
		"CHECK (role IN ('POI admin', 'POI user'))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_poi_memberships_active",
		"WHERE is_active",
		"DROP TABLE IF EXISTS poi_memberships",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestNeedsAndShipmentsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_goods_needs_shipments.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS needs",
		"CHECK (quantity > 0)",
		"CHECK (unit IN ('kg', 'l', 'pcs'))",
		"CHECK (status IN ('active', 'disabled', 'fulfilled'))",
		"CREATE TABLE IF NOT EXISTS shipments",
		"CHECK (status IN ('to do', 'in progress', 'done'))",
		"FOREIGN KEY (need_id) REFERENCES needs(id) ON DELETE RESTRICT",
		"CREATE INDEX IF NOT EXISTS idx_shipments_created_by_status",
		"DROP TABLE IF EXISTS shipments",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
