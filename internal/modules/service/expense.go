package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/fieldcost/fieldcost/internal/engine"
	"github.com/fieldcost/fieldcost/internal/infra/blob"
	"github.com/fieldcost/fieldcost/internal/modules/model"
	"github.com/fieldcost/fieldcost/internal/modules/repo"
	"github.com/fieldcost/fieldcost/internal/pkg/paging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	ErrBadAmount       = errors.New("expense amount must be positive")
	ErrAdminRequired   = errors.New("expense requires administrator approval")
	ErrPhaseMismatch   = errors.New("phase does not belong to project")
	ErrUnknownDecision = errors.New("unknown decision")
)

// ReceiptStore is the external attachment storage boundary. Satisfied by
// infra/blob.S3Deps.
type ReceiptStore interface {
	UploadFormFile(ctx context.Context, keyPrefix string, fh *multipart.FileHeader) (*blob.UploadedMeta, error)
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
}

type SubmitExpenseInput struct {
	ProjectID      uuid.UUID
	PhaseID        *uuid.UUID
	DepartmentName string
	Amount         float64
	Description    string
	Actor          *model.User
	Receipt        *multipart.FileHeader
}

type ListExpensesInput struct {
	ProjectID uuid.UUID
	Status    string
	Limit     int
	Cursor    string
}

type ListExpensesOutput struct {
	Items      []*model.Expense `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

type DecideExpenseInput struct {
	ProjectID uuid.UUID
	ExpenseID uuid.UUID
	Approve   bool
	Remark    string
	Actor     *model.User
}

type ExpenseService interface {
	Submit(ctx context.Context, in SubmitExpenseInput) (*model.Expense, error)
	List(ctx context.Context, in ListExpensesInput) (*ListExpensesOutput, error)
	Decide(ctx context.Context, in DecideExpenseInput) (*model.Expense, error)
	ReceiptURL(ctx context.Context, projectID, expenseID uuid.UUID) (string, error)
}

type expenseService struct {
	expenses  repo.ExpenseRepo
	projects  repo.ProjectRepo
	approvers TempApproverService
	reconcile ReconcileService
	cache     FiguresCache
	receipts  ReceiptStore
	pub       ChangePublisher
	log       *zap.Logger
	presign   func() time.Duration
	now       func() time.Time
}

func NewExpenseService(
	expenses repo.ExpenseRepo,
	projects repo.ProjectRepo,
	approvers TempApproverService,
	reconcile ReconcileService,
	cache FiguresCache,
	receipts ReceiptStore,
	pub ChangePublisher,
	log *zap.Logger,
	presign func() time.Duration,
	now func() time.Time,
) ExpenseService {
	if now == nil {
		now = time.Now
	}
	return &expenseService{
		expenses:  expenses,
		projects:  projects,
		approvers: approvers,
		reconcile: reconcile,
		cache:     cache,
		receipts:  receipts,
		pub:       pub,
		log:       log,
		presign:   presign,
		now:       now,
	}
}

// Submit records a new pending expense. The escalation decision is made
// here, once, against the figures as they stand before this candidate;
// it is persisted with the expense and never recomputed, even when
// budgets are edited later.
//
// Two concurrent submissions can both read the same remaining balance
// and both pass or both escalate; no locking is applied. Last writer
// wins and the budget view self-heals on the next reconciliation pass.
func (s *expenseService) Submit(ctx context.Context, in SubmitExpenseInput) (*model.Expense, error) {
	if in.Actor == nil {
		return nil, ErrNotAuthorized
	}
	if in.Amount <= 0 {
		return nil, ErrBadAmount
	}

	// The submission is a relevant read: run a pass, then evaluate the
	// candidate against the freshly aggregated figures.
	res, err := s.reconcile.ReconcileProject(ctx, in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("aggregate figures: %w", err)
	}

	expense := &model.Expense{
		ProjectID:   in.ProjectID,
		PhaseID:     in.PhaseID,
		Amount:      in.Amount,
		Description: in.Description,
		Status:      model.ExpensePending,
		SubmittedBy: in.Actor.ID,
	}

	if in.PhaseID != nil {
		phaseFig := res.Figures.Phase(*in.PhaseID)
		if phaseFig == nil {
			return nil, ErrPhaseMismatch
		}
		expense.DepartmentKey = model.DepartmentKey(*in.PhaseID, in.DepartmentName)
		expense.IsAdmin = engine.RequiresAdmin(in.Amount, *phaseFig, res.Figures.Department(expense.DepartmentKey))
	} else {
		// No phase bucket to authorize against: elevated sign-off.
		expense.IsAdmin = true
	}

	if in.Receipt != nil && s.receipts != nil {
		meta, err := s.receipts.UploadFormFile(ctx, "receipts/"+in.ProjectID.String(), in.Receipt)
		if err != nil {
			return nil, fmt.Errorf("upload receipt: %w", err)
		}
		expense.Receipt = datatypes.NewJSONType(model.Asset{
			Bucket:   meta.Bucket,
			S3Key:    meta.Key,
			ETag:     meta.ETag,
			SHA256:   meta.SHA256,
			MIME:     meta.MIME,
			SizeB:    meta.SizeB,
			Filename: in.Receipt.Filename,
		})
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.log.Sugar().Infow("expense submitted",
		"project_id", in.ProjectID, "expense_id", expense.ID,
		"amount", in.Amount, "is_admin", expense.IsAdmin)

	return expense, nil
}

func (s *expenseService) List(ctx context.Context, in ListExpensesInput) (*ListExpensesOutput, error) {
	var afterT time.Time
	var afterID uuid.UUID
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	expenses, err := s.expenses.ListByProject(ctx, in.ProjectID, in.Status, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}

	out := &ListExpensesOutput{Items: expenses}
	if len(expenses) > in.Limit {
		out.HasMore = true
		out.Items = expenses[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	return out, nil
}

// Decide approves or rejects a pending expense, exactly once. Authority
// is the project's first manager, a live delegate, or (for escalated
// expenses) an administrator only.
func (s *expenseService) Decide(ctx context.Context, in DecideExpenseInput) (*model.Expense, error) {
	if in.Actor == nil {
		return nil, ErrNotAuthorized
	}

	project, err := s.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	expense, err := s.expenses.Get(ctx, in.ProjectID, in.ExpenseID)
	if err != nil {
		return nil, fmt.Errorf("load expense: %w", err)
	}
	if expense.Decided() {
		return nil, repo.ErrAlreadyDecided
	}

	now := s.now()
	if expense.IsAdmin {
		// Escalated expenses only yield to administrators.
		if !in.Actor.IsAdmin() {
			return nil, ErrAdminRequired
		}
	} else if !in.Actor.IsAdmin() {
		ok, err := s.approvers.HasApprovalAuthority(ctx, project, in.Actor.ID, now)
		if err != nil {
			return nil, fmt.Errorf("authority check: %w", err)
		}
		if !ok {
			return nil, ErrNotAuthorized
		}
	}

	status := model.ExpenseRejected
	if in.Approve {
		status = model.ExpenseApproved
	}
	err = s.expenses.Decide(ctx, in.ProjectID, in.ExpenseID, repo.ExpenseDecision{
		Status:    status,
		DecidedBy: in.Actor.ID,
		Remark:    in.Remark,
		At:        now,
	})
	if err != nil {
		return nil, err
	}

	// Delegated approvals are recorded on the delegation.
	if in.Approve && project.TempApproverID != nil && *project.TempApproverID == in.Actor.ID {
		if err := s.approvers.AppendApprovedExpense(ctx, project.ID, in.Actor.ID, in.ExpenseID); err != nil {
			s.log.Sugar().Warnw("record delegated approval failed",
				"project_id", in.ProjectID, "expense_id", in.ExpenseID, "err", err)
		}
	}

	if err := s.cache.Invalidate(ctx, in.ProjectID); err != nil {
		s.log.Sugar().Debugw("figures cache invalidate failed", "project_id", in.ProjectID, "err", err)
	}

	if s.pub != nil {
		event := ProjectChangedEvent{Topic: "project-updated", ProjectID: in.ProjectID, Status: project.Status, At: now}
		if perr := s.pub.PublishJSON(ctx, event); perr != nil {
			s.log.Sugar().Warnw("change notification failed", "project_id", in.ProjectID, "err", perr)
		}
	}

	s.log.Sugar().Infow("expense decided",
		"project_id", in.ProjectID, "expense_id", in.ExpenseID,
		"status", status, "decided_by", in.Actor.ID)

	return s.expenses.Get(ctx, in.ProjectID, in.ExpenseID)
}

// ReceiptURL produces a pre-signed link for a stored receipt.
func (s *expenseService) ReceiptURL(ctx context.Context, projectID, expenseID uuid.UUID) (string, error) {
	expense, err := s.expenses.Get(ctx, projectID, expenseID)
	if err != nil {
		return "", err
	}
	receipt := expense.Receipt.Data()
	if receipt.S3Key == "" {
		return "", errors.New("expense has no receipt")
	}
	expire := 15 * time.Minute
	if s.presign != nil {
		expire = s.presign()
	}
	return s.receipts.PresignGet(ctx, receipt.S3Key, expire)
}
