package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db, config.DriverSQLite)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := NewFromGorm(newTestDB(t), config.DriverSQLite)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Driver() != config.DriverSQLite {
		t.Fatalf("unexpected driver %q", client.Driver())
	}
}

func TestDialectorForRejectsUnknownDriver(t *testing.T) {
	if _, err := dialectorFor(config.DBConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
	for _, driver := range []string{config.DriverPostgres, config.DriverMySQL, config.DriverSQLite} {
		if _, err := dialectorFor(config.DBConfig{Driver: driver, DSN: "x"}); err != nil {
			t.Fatalf("driver %s: %v", driver, err)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := map[string]bool{
		`ERROR: duplicate key value violates unique constraint "employees_code_key"`: true,
		"Error 1062: Duplicate entry 'E1' for key 'employees.code'":                  true,
		"UNIQUE constraint failed: employees.code":                                   true,
		"connection refused":                                                         false,
	}
	for msg, want := range cases {
		if got := IsUniqueViolation(errors.New(msg), ""); got != want {
			t.Fatalf("IsUniqueViolation(%q)=%v want %v", msg, got, want)
		}
	}
	if !IsUniqueViolation(errors.New("employees_code_key"), "employees_code_key") {
		t.Fatal("expected constraint name match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error is never a violation")
	}
}

func TestIsUniqueViolationReadsDriverErrors(t *testing.T) {
	pgDup := fmt.Errorf("insert employee: %w", &pgconn.PgError{Code: "23505", ConstraintName: "employees_code_key"})
	if !IsUniqueViolation(pgDup, "") || !IsUniqueViolation(pgDup, "employees_code_key") {
		t.Fatal("expected postgres unique violation")
	}
	if IsUniqueViolation(pgDup, "employees_email_key") {
		t.Fatal("a different constraint must not match")
	}
	fk := &pgconn.PgError{Code: "23503", Message: "duplicate key value mentioned in a foreign key message"}
	if IsUniqueViolation(fk, "") {
		t.Fatal("foreign key failures are not unique violations")
	}
	if !IsUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'E1' for key 'employees.code'"}, "employees.code") {
		t.Fatal("expected mysql unique violation")
	}
}
