package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/assessiq/internal/app"
	"github.com/neomorfeo/assessiq/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// OwnerPayload is the API representation of an owner reference.
type OwnerPayload struct {
	OwnerID string `json:"owner_id" minLength:"1" doc:"Owner identifier"`
	Status  string `json:"status,omitempty" doc:"Ownership status"`
}

// UnitPayload is the API representation of a rateable unit.
type UnitPayload struct {
	ID            string  `json:"id,omitempty" doc:"Unit identifier"`
	UsageCategory string  `json:"usage_category" doc:"Usage category, e.g. RESIDENTIAL"`
	OccupancyType string  `json:"occupancy_type,omitempty" doc:"Occupancy type"`
	BuiltUpArea   float64 `json:"built_up_area" minimum:"0" doc:"Built-up area"`
}

// DocumentPayload is the API representation of an attached document.
type DocumentPayload struct {
	ID           string `json:"id,omitempty" doc:"Document identifier"`
	DocumentType string `json:"document_type" doc:"Document type code"`
	FileStoreID  string `json:"file_store_id" doc:"File store reference"`
}

// WorkflowPayload carries the workflow action for a mutation.
type WorkflowPayload struct {
	Action    string   `json:"action" doc:"Workflow action" enum:"INITIATE,APPROVE,REJECT"`
	Comment   string   `json:"comment,omitempty" doc:"Reviewer comment"`
	Assignees []string `json:"assignees,omitempty" doc:"Assignee user ids"`
}

// AssessmentResponse is the API representation of an assessment.
type AssessmentResponse struct {
	ID               string            `json:"id" doc:"Unique identifier"`
	AssessmentNumber string            `json:"assessment_number" doc:"Human-facing assessment number"`
	TenantID         string            `json:"tenant_id" doc:"Tenant"`
	PropertyID       string            `json:"property_id" doc:"Assessed property"`
	FinancialYear    string            `json:"financial_year" doc:"Fiscal period, e.g. 2023-24"`
	AssessmentDate   string            `json:"assessment_date" doc:"Assessment timestamp (ISO 8601)"`
	Status           string            `json:"status" doc:"Lifecycle state"`
	Source           string            `json:"source,omitempty" doc:"Origination source"`
	Channel          string            `json:"channel,omitempty" doc:"Origination channel"`
	Owners           []OwnerPayload    `json:"owners" doc:"Owner references"`
	Units            []UnitPayload     `json:"units,omitempty" doc:"Rateable units"`
	Documents        []DocumentPayload `json:"documents,omitempty" doc:"Attached documents"`
	WorkflowState    string            `json:"workflow_state,omitempty" doc:"Current workflow state name"`
}

func toAssessmentResponse(a domain.Assessment) AssessmentResponse {
	resp := AssessmentResponse{
		ID:               a.ID,
		AssessmentNumber: a.AssessmentNumber,
		TenantID:         a.TenantID,
		PropertyID:       a.PropertyID,
		FinancialYear:    a.FinancialYear,
		AssessmentDate:   a.AssessmentDate.UTC().Format(timeFormat),
		Status:           string(a.Status),
		Source:           a.Source,
		Channel:          a.Channel,
	}
	for _, o := range a.Owners {
		resp.Owners = append(resp.Owners, OwnerPayload{OwnerID: o.OwnerID, Status: o.Status})
	}
	for _, u := range a.Units {
		resp.Units = append(resp.Units, UnitPayload{
			ID: u.ID, UsageCategory: u.UsageCategory,
			OccupancyType: u.OccupancyType, BuiltUpArea: u.BuiltUpArea,
		})
	}
	for _, d := range a.Documents {
		resp.Documents = append(resp.Documents, DocumentPayload{
			ID: d.ID, DocumentType: d.DocumentType, FileStoreID: d.FileStoreID,
		})
	}
	if a.Workflow != nil {
		resp.WorkflowState = a.Workflow.State.Name
	}
	return resp
}

// --- Create ---

type CreateAssessmentInput struct {
	UserID string `header:"X-User-Id" required:"false" doc:"Acting user"`
	Body   struct {
		TenantID      string            `json:"tenant_id" minLength:"1" doc:"Tenant"`
		PropertyID    string            `json:"property_id" minLength:"1" doc:"Assessed property"`
		FinancialYear string            `json:"financial_year" minLength:"7" maxLength:"7" doc:"Fiscal period, e.g. 2023-24"`
		Source        string            `json:"source,omitempty" doc:"Origination source"`
		Channel       string            `json:"channel,omitempty" doc:"Origination channel"`
		Owners        []OwnerPayload    `json:"owners" minItems:"1" doc:"Owner references"`
		Units         []UnitPayload     `json:"units,omitempty" doc:"Rateable units"`
		Documents     []DocumentPayload `json:"documents,omitempty" doc:"Attached documents"`
	}
}

type CreateAssessmentOutput struct {
	Body AssessmentResponse
}

// --- Update ---

type UpdateAssessmentInput struct {
	ID     string `path:"id" doc:"Assessment ID"`
	UserID string `header:"X-User-Id" required:"false" doc:"Acting user"`
	Body   struct {
		TenantID         string            `json:"tenant_id" minLength:"1" doc:"Tenant"`
		AssessmentNumber string            `json:"assessment_number" minLength:"1" doc:"Assessment number"`
		PropertyID       string            `json:"property_id" minLength:"1" doc:"Assessed property"`
		FinancialYear    string            `json:"financial_year" minLength:"7" maxLength:"7" doc:"Fiscal period"`
		AssessmentDate   string            `json:"assessment_date,omitempty" doc:"Assessment timestamp (ISO 8601)"`
		Status           string            `json:"status,omitempty" doc:"Requested status" enum:",ACTIVE,INACTIVE,INWORKFLOW,CANCELLED"`
		Source           string            `json:"source,omitempty" doc:"Origination source"`
		Channel          string            `json:"channel,omitempty" doc:"Origination channel"`
		Owners           []OwnerPayload    `json:"owners" minItems:"1" doc:"Owner references"`
		Units            []UnitPayload     `json:"units,omitempty" doc:"Rateable units"`
		Documents        []DocumentPayload `json:"documents,omitempty" doc:"Attached documents"`
		Workflow         *WorkflowPayload  `json:"workflow,omitempty" doc:"Workflow action for this mutation"`
	}
}

type UpdateAssessmentOutput struct {
	Body AssessmentResponse
}

// --- Search ---

type SearchAssessmentsInput struct {
	TenantID      string `query:"tenant_id" required:"false" doc:"Tenant filter"`
	PropertyIDs   string `query:"property_ids" required:"false" doc:"Comma-separated property ids"`
	FinancialYear string `query:"financial_year" required:"false" doc:"Fiscal period filter"`
	Status        string `query:"status" required:"false" doc:"Status filter"`
	Limit         int    `query:"limit" required:"false" doc:"Max results"`
	Offset        int    `query:"offset" required:"false" doc:"Pagination offset"`
}

type SearchAssessmentsOutput struct {
	Body []AssessmentResponse
}

// PlainSearchInput distinguishes unset limit/offset from zero so the
// service can apply configured defaults and clamping.
type PlainSearchInput struct {
	TenantID          string `query:"tenant_id" required:"false" doc:"Tenant filter"`
	IDs               string `query:"ids" required:"false" doc:"Comma-separated assessment ids"`
	PropertyIDs       string `query:"property_ids" required:"false" doc:"Comma-separated property ids"`
	AssessmentNumbers string `query:"assessment_numbers" required:"false" doc:"Comma-separated assessment numbers"`
	FinancialYear     string `query:"financial_year" required:"false" doc:"Fiscal period filter"`
	Limit             *int   `query:"limit" required:"false" doc:"Max results (clamped to the configured maximum)"`
	Offset            *int   `query:"offset" required:"false" doc:"Pagination offset"`
}

type PlainSearchOutput struct {
	Body []AssessmentResponse
}

// Register adds all assessment API routes to the Huma API.
func Register(api huma.API, svc *app.AssessmentService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-assessment",
		Method:      http.MethodPost,
		Path:        "/api/v1/assessments",
		Summary:     "Create a new assessment",
		Tags:        []string{"Assessments"},
	}, func(ctx context.Context, input *CreateAssessmentInput) (*CreateAssessmentOutput, error) {
		request := domain.AssessmentRequest{
			RequestInfo: domain.RequestInfo{UserID: input.UserID},
			Assessment: domain.Assessment{
				TenantID:      input.Body.TenantID,
				PropertyID:    input.Body.PropertyID,
				FinancialYear: input.Body.FinancialYear,
				Source:        input.Body.Source,
				Channel:       input.Body.Channel,
				Owners:        toOwners(input.Body.Owners),
				Units:         toUnits(input.Body.Units),
				Documents:     toDocuments(input.Body.Documents),
			},
		}

		assessment, err := svc.Create(ctx, &request)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateAssessmentOutput{Body: toAssessmentResponse(assessment)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-assessment",
		Method:      http.MethodPut,
		Path:        "/api/v1/assessments/{id}",
		Summary:     "Update an assessment",
		Tags:        []string{"Assessments"},
	}, func(ctx context.Context, input *UpdateAssessmentInput) (*UpdateAssessmentOutput, error) {
		assessmentDate := time.Time{}
		if input.Body.AssessmentDate != "" {
			parsed, err := time.Parse(timeFormat, input.Body.AssessmentDate)
			if err != nil {
				return nil, huma.Error422UnprocessableEntity("assessment_date must be ISO 8601")
			}
			assessmentDate = parsed
		}

		request := domain.AssessmentRequest{
			RequestInfo: domain.RequestInfo{UserID: input.UserID},
			Assessment: domain.Assessment{
				ID:               input.ID,
				AssessmentNumber: input.Body.AssessmentNumber,
				TenantID:         input.Body.TenantID,
				PropertyID:       input.Body.PropertyID,
				FinancialYear:    input.Body.FinancialYear,
				AssessmentDate:   assessmentDate,
				Status:           domain.Status(input.Body.Status),
				Source:           input.Body.Source,
				Channel:          input.Body.Channel,
				Owners:           toOwners(input.Body.Owners),
				Units:            toUnits(input.Body.Units),
				Documents:        toDocuments(input.Body.Documents),
			},
		}
		if input.Body.Workflow != nil {
			request.Assessment.Workflow = &domain.ProcessInstance{
				TenantID:        input.Body.TenantID,
				BusinessService: domain.BusinessServiceAssessment,
				Action:          input.Body.Workflow.Action,
				Comment:         input.Body.Workflow.Comment,
				Assignees:       input.Body.Workflow.Assignees,
			}
		}

		assessment, err := svc.Update(ctx, &request)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpdateAssessmentOutput{Body: toAssessmentResponse(assessment)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "search-assessments",
		Method:      http.MethodGet,
		Path:        "/api/v1/assessments",
		Summary:     "Search assessments",
		Tags:        []string{"Assessments"},
	}, func(ctx context.Context, input *SearchAssessmentsInput) (*SearchAssessmentsOutput, error) {
		criteria := domain.SearchCriteria{
			TenantID:      input.TenantID,
			PropertyIDs:   splitCSV(input.PropertyIDs),
			FinancialYear: input.FinancialYear,
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			criteria.Status = &s
		}
		if input.Limit > 0 {
			criteria.Limit = &input.Limit
		}
		if input.Offset > 0 {
			criteria.Offset = &input.Offset
		}

		assessments, err := svc.Search(ctx, criteria)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SearchAssessmentsOutput{Body: toResponses(assessments)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "plain-search-assessments",
		Method:      http.MethodGet,
		Path:        "/api/v1/assessments/plain",
		Summary:     "Bulk search with normalized pagination",
		Tags:        []string{"Assessments"},
	}, func(ctx context.Context, input *PlainSearchInput) (*PlainSearchOutput, error) {
		criteria := domain.SearchCriteria{
			TenantID:          input.TenantID,
			IDs:               splitCSV(input.IDs),
			PropertyIDs:       splitCSV(input.PropertyIDs),
			AssessmentNumbers: splitCSV(input.AssessmentNumbers),
			FinancialYear:     input.FinancialYear,
			Limit:             input.Limit,
			Offset:            input.Offset,
		}

		assessments, err := svc.PlainSearch(ctx, criteria)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PlainSearchOutput{Body: toResponses(assessments)}, nil
	})
}

func toOwners(in []OwnerPayload) []domain.OwnerInfo {
	out := make([]domain.OwnerInfo, 0, len(in))
	for _, o := range in {
		out = append(out, domain.OwnerInfo{OwnerID: o.OwnerID, Status: o.Status})
	}
	return out
}

func toUnits(in []UnitPayload) []domain.Unit {
	out := make([]domain.Unit, 0, len(in))
	for _, u := range in {
		out = append(out, domain.Unit{
			ID: u.ID, UsageCategory: u.UsageCategory,
			OccupancyType: u.OccupancyType, BuiltUpArea: u.BuiltUpArea,
		})
	}
	return out
}

func toDocuments(in []DocumentPayload) []domain.Document {
	out := make([]domain.Document, 0, len(in))
	for _, d := range in {
		out = append(out, domain.Document{
			ID: d.ID, DocumentType: d.DocumentType, FileStoreID: d.FileStoreID,
		})
	}
	return out
}

func toResponses(in []domain.Assessment) []AssessmentResponse {
	out := make([]AssessmentResponse, len(in))
	for i, a := range in {
		out[i] = toAssessmentResponse(a)
	}
	return out
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrAssessmentNotFound) {
		return huma.Error404NotFound("assessment not found")
	}

	var notFound *domain.PropertyNotFoundError
	if errors.As(err, &notFound) {
		return huma.Error404NotFound(notFound.Error())
	}

	var duplicate *domain.DuplicateAssessmentError
	if errors.As(err, &duplicate) {
		return huma.Error409Conflict(duplicate.Error())
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return huma.Error422UnprocessableEntity(validation.Error())
	}

	var unmapped *domain.UnmappedStatusError
	if errors.As(err, &unmapped) {
		return huma.Error502BadGateway(unmapped.Error())
	}

	var engine *domain.WorkflowEngineError
	if errors.As(err, &engine) {
		return huma.Error502BadGateway(engine.Error())
	}

	var billing *domain.BillingServiceError
	if errors.As(err, &billing) {
		return huma.Error502BadGateway(billing.Error())
	}

	var calculation *domain.CalculationError
	if errors.As(err, &calculation) {
		return huma.Error502BadGateway(calculation.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
