package database

import (
	"io/fs"
	"path"
	"strings"
	"testing"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := fs.ReadFile(migrationsFS, path.Join(migrationsDir, name))
	if err != nil {
		t.Fatalf("Failed to read migration %s: %v", name, err)
	}
	return string(content)
}

func TestMigrationFilesExist(t *testing.T) {
	expectedMigrations := []string{
		"00001_create_site_settings_table.sql",
		"00002_create_pages_table.sql",
		"00003_create_collections_table.sql",
		"00004_create_products_table.sql",
		"00005_create_product_options_table.sql",
		"00006_create_product_variants_table.sql",
		"00007_create_instagram_posts_table.sql",
	}

	for _, migration := range expectedMigrations {
		if _, err := fs.Stat(migrationsFS, path.Join(migrationsDir, migration)); err != nil {
			t.Errorf("Migration file %s is not embedded: %v", migration, err)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}

	sqlFileCount := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		sqlFileCount++

		content := readMigration(t, entry.Name())
		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(content, directive) {
				t.Errorf("Migration file %s missing '%s' directive", entry.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"site_settings":            "00001_create_site_settings_table.sql",
		"social_links":             "00001_create_site_settings_table.sql",
		"pages":                    "00002_create_pages_table.sql",
		"collections":              "00003_create_collections_table.sql",
		"products":                 "00004_create_products_table.sql",
		"product_collections":      "00004_create_products_table.sql",
		"product_images":           "00004_create_products_table.sql",
		"product_options":          "00005_create_product_options_table.sql",
		"product_option_values":    "00005_create_product_options_table.sql",
		"product_variants":         "00006_create_product_variants_table.sql",
		"variant_selected_options": "00006_create_product_variants_table.sql",
		"instagram_posts":          "00007_create_instagram_posts_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content := readMigration(t, migrationFile)

		if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS "+tableName+" (") {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(content, "DROP TABLE IF EXISTS "+tableName+";") {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestVariantsTableHasRequiredColumns(t *testing.T) {
	content := readMigration(t, "00006_create_product_variants_table.sql")

	requiredColumns := []string{
		"id VARCHAR(255) PRIMARY KEY",
		"product_id VARCHAR",
		"price DECIMAL",
		"available_for_sale BOOLEAN",
		"image_url VARCHAR",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(content, column) {
			t.Errorf("product_variants table missing required column definition: %s", column)
		}
	}

	// one value per option dimension per variant
	if !strings.Contains(content, "PRIMARY KEY (variant_id, name)") {
		t.Error("variant_selected_options must allow one value per option name")
	}
}
