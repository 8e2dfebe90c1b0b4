package agent

import (
	"errors"
	"strings"
	"testing"
)

type userRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type surveyResult struct {
	Title string   `json:"title"`
	Score int      `json:"score"`
	Tags  []string `json:"tags,omitempty"`
}

func TestNewContractRejectsNonStruct(t *testing.T) {
	if _, err := NewContract("not a struct"); err == nil {
		t.Fatal("expected error for non-struct sample")
	}
}

func TestContractHint(t *testing.T) {
	c, err := NewContract(&userRecord{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hint := c.Hint()
	if hint != "{name: string, email: string}" {
		t.Errorf("unexpected hint: %q", hint)
	}
}

func TestContractValidateSuccess(t *testing.T) {
	c, err := NewContract(&userRecord{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, err := c.Validate(`{"name": "Alice", "email": "alice@example.com"}`)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if payload["name"] != "Alice" {
		t.Errorf("expected name Alice, got %v", payload["name"])
	}
}

func TestContractValidateMissingField(t *testing.T) {
	c, err := NewContract(&userRecord{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.Validate(`{"name": "Alice"}`)
	if err == nil {
		t.Fatal("expected validation error for missing email")
	}
	var cerr *ContractError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ContractError, got %T", err)
	}
	if len(cerr.Missing) != 1 || cerr.Missing[0] != "email" {
		t.Errorf("expected missing email, got %v", cerr.Missing)
	}
	if !strings.Contains(err.Error(), "email") {
		t.Errorf("error should name the missing field: %v", err)
	}
}

func TestContractValidateTypeMismatch(t *testing.T) {
	c, err := NewContract(&surveyResult{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.Validate(`{"title": "ok", "score": "not a number"}`)
	if err == nil {
		t.Fatal("expected validation error for wrong score type")
	}
	var cerr *ContractError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ContractError, got %T", err)
	}
	if len(cerr.Mismatched) != 1 || cerr.Mismatched[0] != "score" {
		t.Errorf("expected mismatched score, got %v", cerr.Mismatched)
	}
}

func TestContractValidateRepairsMalformedJSON(t *testing.T) {
	c, err := NewContract(&userRecord{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Trailing comma gets repaired before validation.
	payload, err := c.Validate(`{"name": "Bob", "email": "bob@example.com",}`)
	if err != nil {
		t.Fatalf("expected repair to succeed: %v", err)
	}
	if payload["email"] != "bob@example.com" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestContractValidateNonObject(t *testing.T) {
	c, err := NewContract(&userRecord{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Validate("plain prose answer"); err == nil {
		t.Fatal("expected error for non-object payload")
	}
}

func TestContractDecode(t *testing.T) {
	c, err := NewContract(&userRecord{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out userRecord
	if err := c.Decode(`{"name": "Alice", "email": "a@b.c"}`, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "Alice" || out.Email != "a@b.c" {
		t.Errorf("unexpected decode result: %+v", out)
	}
}

func TestContractExampleSatisfiesContract(t *testing.T) {
	c, err := NewContract(&surveyResult{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Validate(c.Example()); err != nil {
		t.Errorf("contract example must validate against itself: %v", err)
	}
}
