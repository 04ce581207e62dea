package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// setupTestDB points the package at a fresh database in a temp dir.
func setupTestDB(t *testing.T) string {
	t.Helper()
	CloseDB()
	tempDir := t.TempDir()
	Configure(filepath.Join(tempDir, "history.db"))
	t.Cleanup(CloseDB)
	return tempDir
}

func TestDBLifecycle(t *testing.T) {
	setupTestDB(t)

	d, err := GetDB()
	if err != nil {
		t.Fatalf("GetDB failed: %v", err)
	}
	if d == nil {
		t.Fatal("GetDB returned nil")
	}

	// Test Singleton
	d2, err := GetDB()
	if err != nil {
		t.Fatalf("GetDB 2 failed: %v", err)
	}
	if d != d2 {
		t.Error("GetDB should return the same instance")
	}

	CloseDB()
	if db != nil {
		t.Error("db variable should be nil after CloseDB")
	}

	// Verify we can re-open (GetDB should re-init)
	d3, err := GetDB()
	if err != nil {
		t.Fatalf("Re-opening GetDB failed: %v", err)
	}

	if _, err := d3.Exec("SELECT * FROM history LIMIT 1"); err != nil {
		t.Errorf("Table 'history' check failed: %v", err)
	}
}

func TestWithTx_Commit(t *testing.T) {
	setupTestDB(t)

	err := withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO history (id, kind, name, info_hash) VALUES (?, ?, ?, ?)", "tx-test-1", "build", "a", "00")
		return err
	})
	if err != nil {
		t.Fatalf("withTx failed: %v", err)
	}

	d, _ := GetDB()
	var name string
	if err := d.QueryRow("SELECT name FROM history WHERE id = ?", "tx-test-1").Scan(&name); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if name != "a" {
		t.Errorf("Expected 'a', got '%s'", name)
	}
}

func TestWithTx_Rollback(t *testing.T) {
	setupTestDB(t)

	expectedErr := fmt.Errorf("intentional error")
	err := withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO history (id, kind, name, info_hash) VALUES (?, ?, ?, ?)", "tx-test-2", "build", "b", "00"); err != nil {
			return err
		}
		return expectedErr
	})
	if err != expectedErr {
		t.Fatalf("Expected error %v, got %v", expectedErr, err)
	}

	d, _ := GetDB()
	var count int
	if err := d.QueryRow("SELECT count(*) FROM history WHERE id = ?", "tx-test-2").Scan(&count); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if count != 0 {
		t.Error("Transaction should have rolled back, but record found")
	}
}

func TestInitDB_CreatesDir(t *testing.T) {
	CloseDB()
	t.Cleanup(CloseDB)

	path := filepath.Join(t.TempDir(), "nested", "state", "history.db")
	Configure(path)

	if _, err := GetDB(); err != nil {
		t.Fatalf("GetDB failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Database file not created at %s", path)
	}
}

func TestGetDB_Unconfigured(t *testing.T) {
	CloseDB()
	dbMu.Lock()
	prevPath, prevConfigured := dbPath, configured
	configured = false
	dbPath = ""
	dbMu.Unlock()
	t.Cleanup(func() {
		dbMu.Lock()
		dbPath, configured = prevPath, prevConfigured
		dbMu.Unlock()
	})

	if _, err := GetDB(); err == nil {
		t.Fatal("expected an error before Configure")
	}
}
