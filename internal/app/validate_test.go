package app_test

import (
	"errors"
	"testing"

	"github.com/neomorfeo/assessiq/internal/app"
	"github.com/neomorfeo/assessiq/internal/domain"
)

func testProperty() domain.Property {
	return domain.Property{PropertyID: "PT-100", TenantID: "pb.amritsar"}
}

func TestValidateCreate_Valid(t *testing.T) {
	v := app.NewRequestValidator()
	if err := v.ValidateCreate(*createRequest(), testProperty()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCreate_Rejections(t *testing.T) {
	v := app.NewRequestValidator()

	cases := map[string]func(*domain.AssessmentRequest){
		"missing tenant":         func(r *domain.AssessmentRequest) { r.Assessment.TenantID = "" },
		"bad financial year":     func(r *domain.AssessmentRequest) { r.Assessment.FinancialYear = "2023/24" },
		"wrong property binding": func(r *domain.AssessmentRequest) { r.Assessment.PropertyID = "PT-999" },
		"no owners":              func(r *domain.AssessmentRequest) { r.Assessment.Owners = nil },
	}

	for name, mutate := range cases {
		request := createRequest()
		mutate(request)

		err := v.ValidateCreate(*request, testProperty())
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestValidateUpdate_ImmutableIdentity(t *testing.T) {
	v := app.NewRequestValidator()
	stored := storedAssessment()

	request := updateRequest(stored)
	request.Assessment.AssessmentNumber = "ASMT-2023-24-other"

	err := v.ValidateUpdate(*request, stored, testProperty(), false)
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestValidateUpdate_CancelledIsFrozen(t *testing.T) {
	v := app.NewRequestValidator()
	stored := storedAssessment()
	stored.Status = domain.StatusCancelled

	err := v.ValidateUpdate(*updateRequest(stored), stored, testProperty(), false)
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestValidateUpdate_WorkflowActionRequiredWhenTriggered(t *testing.T) {
	v := app.NewRequestValidator()
	stored := storedAssessment()
	stored.Status = domain.StatusActive

	request := updateRequest(stored)
	request.Assessment.Status = domain.StatusActive
	request.Assessment.Workflow = nil

	err := v.ValidateUpdate(*request, stored, testProperty(), true)
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Untriggered update of a settled assessment needs no action.
	if err := v.ValidateUpdate(*request, stored, testProperty(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
