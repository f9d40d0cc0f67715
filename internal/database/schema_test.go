package database

import (
	"io/fs"
	"strings"
	"testing"

	"storefront/internal/domain"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := fs.ReadFile(embedMigrations, migrationsDir+"/"+name)
	if err != nil {
		t.Fatalf("Failed to read migration file %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesAreEmbedded(t *testing.T) {
	expectedMigrations := []string{
		"00001_create_products_table.sql",
		"00002_create_posts_table.sql",
		"00003_create_customers_table.sql",
		"00004_create_inventory_table.sql",
		"00005_create_orders_table.sql",
	}

	for _, migration := range expectedMigrations {
		if _, err := fs.Stat(embedMigrations, migrationsDir+"/"+migration); err != nil {
			t.Errorf("Migration file %s is not embedded: %v", migration, err)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := fs.ReadDir(embedMigrations, migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		contentStr := readMigration(t, file.Name())

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(contentStr, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

// Every collection of the document has a table with the same name and the
// columns the remote client queries
func TestMigrationsCreateOneTablePerCollection(t *testing.T) {
	files := map[string]string{
		domain.CollectionProducts:  "00001_create_products_table.sql",
		domain.CollectionPosts:     "00002_create_posts_table.sql",
		domain.CollectionCustomers: "00003_create_customers_table.sql",
		domain.CollectionInventory: "00004_create_inventory_table.sql",
		domain.CollectionOrders:    "00005_create_orders_table.sql",
	}

	for _, collection := range domain.Collections {
		file, ok := files[collection]
		if !ok {
			t.Errorf("No migration for collection %s", collection)
			continue
		}
		contentStr := readMigration(t, file)

		if !strings.Contains(contentStr, "CREATE TABLE IF NOT EXISTS "+collection) {
			t.Errorf("Migration file %s does not create table %s", file, collection)
		}
		if !strings.Contains(contentStr, "DROP TABLE IF EXISTS "+collection) {
			t.Errorf("Migration file %s does not drop table %s in down section", file, collection)
		}
		for _, column := range []string{"id TEXT PRIMARY KEY", "doc JSONB NOT NULL", "position INTEGER", "updated_at TIMESTAMP"} {
			if !strings.Contains(contentStr, column) {
				t.Errorf("Table %s missing required column definition: %s", collection, column)
			}
		}
	}
}

func TestLookupFieldsAreIndexed(t *testing.T) {
	indexed := map[string]string{
		"00001_create_products_table.sql":  "doc->>'slug'",
		"00002_create_posts_table.sql":     "doc->>'slug'",
		"00003_create_customers_table.sql": "doc->>'email'",
		"00004_create_inventory_table.sql": "doc->>'productId'",
		"00005_create_orders_table.sql":    "doc->>'orderNumber'",
	}

	for file, expr := range indexed {
		if !strings.Contains(readMigration(t, file), expr) {
			t.Errorf("Migration file %s does not index %s", file, expr)
		}
	}
}
