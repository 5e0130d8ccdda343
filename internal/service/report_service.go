package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/nurpe/freight-cost-reports/internal/config"
	"github.com/nurpe/freight-cost-reports/internal/costing"
	"github.com/nurpe/freight-cost-reports/internal/metrics"
	"github.com/nurpe/freight-cost-reports/internal/model"
)

// CostStore is the query side the reports are computed from.
type CostStore interface {
	GetSetting(ctx context.Context, orgID int64, key string) (string, bool, error)
	GetWorkflowBoundaries(ctx context.Context, orgID int64) (model.WorkflowBoundaries, error)
	ListTripCandidates(ctx context.Context, q model.TripQuery) ([]model.TripCandidate, error)
	SumAdvances(ctx context.Context, q model.AdvanceQuery) ([]model.AdvanceTotal, error)
}

type PartyStore interface {
	ListParties(ctx context.Context, kind model.PartyKind, orgID int64, ids []int64) ([]model.PartyInfo, error)
	GetPartyDetail(ctx context.Context, kind model.PartyKind, orgID, id int64) (*model.PartyDetail, error)
}

type CostReportService struct {
	costs           CostStore
	parties         PartyStore
	excel           ExcelGenerator
	pdf             PDFGenerator
	metrics         *metrics.Metrics
	log             zerolog.Logger
	defaultPageSize int
	maxPageSize     int
}

func NewCostReportService(
	costs CostStore,
	parties PartyStore,
	excel ExcelGenerator,
	pdf PDFGenerator,
	m *metrics.Metrics,
	cfg *config.Config,
	log zerolog.Logger,
) *CostReportService {
	s := &CostReportService{
		costs:           costs,
		parties:         parties,
		excel:           excel,
		pdf:             pdf,
		metrics:         m,
		log:             log,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
	if cfg != nil {
		if cfg.Reports.DefaultPageSize > 0 {
			s.defaultPageSize = cfg.Reports.DefaultPageSize
		}
		if cfg.Reports.MaxPageSize > 0 {
			s.maxPageSize = cfg.Reports.MaxPageSize
		}
	}
	if s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = s.maxPageSize
	}
	return s
}

// ReportInput carries the parameters shared by every cost report.
type ReportInput struct {
	Kind            model.PartyKind
	OrganizationID  int64
	DriverReportIDs []int64
	StartDate       time.Time
	EndDate         time.Time
}

type ListCostsInput struct {
	ReportInput
	Page     int
	PageSize int
}

// calculation is the party-level result before party info is joined.
type calculation struct {
	basis   model.DateBasis
	rng     model.DateRange
	trips   []model.ResolvedTrip
	rows    []model.PartyCostRow
	missing []string
}

func (c calculation) partial() bool {
	return len(c.missing) > 0
}

// ListCosts returns one page of party cost rows ordered by party code.
func (s *CostReportService) ListCosts(ctx context.Context, input ListCostsInput) (result *model.CostPage, err error) {
	defer s.observe(input.Kind, "list", time.Now(), &err)

	if err := validate(input.ReportInput); err != nil {
		return nil, err
	}
	page, pageSize := s.pageParams(input.Page, input.PageSize)

	calc, err := s.calculate(ctx, input.ReportInput, nil)
	if err != nil {
		return nil, err
	}
	rows, err := s.withParties(ctx, input.ReportInput, calc.rows)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveParties(string(input.Kind), len(rows))

	pageRows, pagination := costing.Paginate(rows, page, pageSize)
	return &model.CostPage{
		Rows:              pageRows,
		Pagination:        pagination,
		Partial:           calc.partial(),
		MissingBoundaries: calc.missing,
	}, nil
}

// GetCostDetail returns the cost row of one party with its contact fields, or
// nil when the party has neither trips nor advances in range.
func (s *CostReportService) GetCostDetail(ctx context.Context, input ReportInput, partyID int64) (result *model.CostDetail, err error) {
	defer s.observe(input.Kind, "detail", time.Now(), &err)

	if err := validate(input); err != nil {
		return nil, err
	}
	if partyID <= 0 {
		return nil, fmt.Errorf("%w: party id is required", ErrInvalidInput)
	}

	party, err := s.parties.GetPartyDetail(ctx, input.Kind, input.OrganizationID, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(input.DriverReportIDs) == 0 {
		return nil, nil
	}

	calc, err := s.calculate(ctx, input, &partyID)
	if err != nil {
		return nil, err
	}
	for _, row := range calc.rows {
		if row.PartyID != partyID {
			continue
		}
		row.Code = party.Code
		row.Name = party.Name
		return &model.CostDetail{
			PartyCostRow:      row,
			Party:             *party,
			Partial:           calc.partial(),
			MissingBoundaries: calc.missing,
		}, nil
	}
	return nil, nil
}

// ListPartyTrips returns the resolved trips counted in one party's cost row.
func (s *CostReportService) ListPartyTrips(ctx context.Context, input ReportInput, partyID int64) (result *model.PartyTrips, err error) {
	defer s.observe(input.Kind, "trips", time.Now(), &err)

	if err := validate(input); err != nil {
		return nil, err
	}
	if partyID <= 0 {
		return nil, fmt.Errorf("%w: party id is required", ErrInvalidInput)
	}

	parties, err := s.parties.ListParties(ctx, input.Kind, input.OrganizationID, []int64{partyID})
	if err != nil {
		return nil, err
	}
	if len(parties) == 0 {
		return nil, ErrNotFound
	}
	if len(input.DriverReportIDs) == 0 {
		return &model.PartyTrips{PartyID: partyID, Trips: []model.ResolvedTrip{}}, nil
	}

	calc, err := s.calculate(ctx, input, &partyID)
	if err != nil {
		return nil, err
	}
	trips := calc.trips
	if trips == nil {
		trips = []model.ResolvedTrip{}
	}
	return &model.PartyTrips{
		PartyID:           partyID,
		Trips:             trips,
		Partial:           calc.partial(),
		MissingBoundaries: calc.missing,
	}, nil
}

// ExportCosts returns every party row unpaginated together with each party's trips.
func (s *CostReportService) ExportCosts(ctx context.Context, input ReportInput) (result *model.CostExport, err error) {
	defer s.observe(input.Kind, "export", time.Now(), &err)

	if err := validate(input); err != nil {
		return nil, err
	}

	calc, err := s.calculate(ctx, input, nil)
	if err != nil {
		return nil, err
	}
	rows, err := s.withParties(ctx, input, calc.rows)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveParties(string(input.Kind), len(rows))

	return &model.CostExport{
		Kind:        input.Kind,
		PeriodStart: dateOnly(input.StartDate),
		PeriodEnd:   dateOnly(input.EndDate),
		DateBasis:   calc.basis,
		Rows:        rows,
		Trips:       costing.GroupTrips(calc.trips),
		Partial:     calc.partial(),
	}, nil
}

// calculate runs the engine: settings, then boundaries, candidates and
// advances in parallel, then window resolution, filtering and aggregation.
func (s *CostReportService) calculate(ctx context.Context, input ReportInput, partyID *int64) (calculation, error) {
	calc := calculation{
		basis: model.DateBasisStatusCreatedAt,
		rng:   costing.NewDateRange(input.StartDate, input.EndDate),
		trips: []model.ResolvedTrip{},
		rows:  []model.PartyCostRow{},
	}
	if len(input.DriverReportIDs) == 0 {
		return calc, nil
	}

	calc.basis = s.resolveDateBasis(ctx, input.OrganizationID)
	strategy := costing.StrategyFor(calc.basis)

	var (
		bounds     model.WorkflowBoundaries
		candidates []model.TripCandidate
		advances   []model.AdvanceTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bounds, err = s.costs.GetWorkflowBoundaries(gctx, input.OrganizationID)
		if err != nil {
			return fmt.Errorf("load workflow boundaries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		candidates, err = s.costs.ListTripCandidates(gctx, strategy.TripQuery(input.Kind, input.OrganizationID, partyID, calc.rng))
		if err != nil {
			return fmt.Errorf("load trip candidates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		advances, err = s.costs.SumAdvances(gctx, model.AdvanceQuery{
			Kind:           input.Kind,
			OrganizationID: input.OrganizationID,
			PartyID:        partyID,
			Range:          calc.rng,
		})
		if err != nil {
			return fmt.Errorf("sum advances: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return calculation{}, err
	}

	calc.missing = bounds.Missing()
	if calc.partial() {
		s.log.Warn().
			Int64("organization_id", input.OrganizationID).
			Str("kind", string(input.Kind)).
			Strs("missing_boundaries", calc.missing).
			Msg("workflow boundaries not configured, report windows are partial")
		s.metrics.IncPartial(string(input.Kind))
	}

	resolved := costing.ResolveWindows(candidates, bounds, input.DriverReportIDs)
	calc.trips = strategy.Apply(resolved, calc.rng)
	if inverted := costing.CountInverted(calc.trips); inverted > 0 {
		s.log.Debug().
			Int64("organization_id", input.OrganizationID).
			Str("kind", string(input.Kind)).
			Int("trips", inverted).
			Msg("trips with start date after end date")
	}

	calc.rows = costing.MergeAdvances(costing.AggregateCosts(calc.trips), advances)
	return calc, nil
}

// resolveDateBasis never fails the report: lookup errors and unknown values
// fall back to STATUS_CREATED_AT.
func (s *CostReportService) resolveDateBasis(ctx context.Context, orgID int64) model.DateBasis {
	raw, found, err := s.costs.GetSetting(ctx, orgID, model.SettingKeyReportCalculationDate)
	if err != nil {
		s.log.Warn().Err(err).Int64("organization_id", orgID).Msg("date basis setting lookup failed, using default")
		return model.DateBasisStatusCreatedAt
	}
	if !found {
		return model.DateBasisStatusCreatedAt
	}
	basis := model.ParseDateBasis(strings.TrimSpace(raw))
	if string(basis) != strings.TrimSpace(raw) {
		s.log.Debug().Str("value", raw).Int64("organization_id", orgID).Msg("unknown date basis, using default")
	}
	return basis
}

func (s *CostReportService) withParties(ctx context.Context, input ReportInput, rows []model.PartyCostRow) ([]model.PartyCostRow, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	parties, err := s.parties.ListParties(ctx, input.Kind, input.OrganizationID, costing.PartyIDs(rows))
	if err != nil {
		return nil, fmt.Errorf("load parties: %w", err)
	}
	return costing.AttachParties(rows, parties), nil
}

func (s *CostReportService) pageParams(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize
}

func (s *CostReportService) observe(kind model.PartyKind, operation string, started time.Time, err *error) {
	s.metrics.ObserveReport(string(kind), operation, time.Since(started), *err)
}

func validate(input ReportInput) error {
	if !input.Kind.Valid() {
		return fmt.Errorf("%w: unknown party kind", ErrInvalidInput)
	}
	if input.OrganizationID <= 0 {
		return fmt.Errorf("%w: organization is required", ErrInvalidInput)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}
	if dateOnly(input.StartDate).After(dateOnly(input.EndDate)) {
		return fmt.Errorf("%w: start_date must be before or equal to end_date", ErrInvalidInput)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
