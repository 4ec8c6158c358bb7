package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casarom/salesapi/internal/domain"
	"github.com/casarom/salesapi/internal/telemetry"
)

// QuoteIDGenerator generates quote identifiers.
type QuoteIDGenerator interface {
	NewQuoteID() string
}

// DefaultQuoteIDGenerator produces ids of the form CRQ-XXXXXXXX.
type DefaultQuoteIDGenerator struct{}

func (g *DefaultQuoteIDGenerator) NewQuoteID() string {
	id := uuid.New()
	return "CRQ-" + strings.ToUpper(fmt.Sprintf("%x", id[:4]))
}

// QuoteReader retrieves persisted quotes.
type QuoteReader interface {
	GetByID(ctx context.Context, quoteID string) (*domain.Quote, error)
}

// QuoteArchiver stores an off-database copy of a committed quote.
type QuoteArchiver interface {
	ArchiveQuote(ctx context.Context, quote *domain.Quote) error
}

// QuoteLineInput is one requested line of a quote.
type QuoteLineInput struct {
	SKU        string
	Qty        int
	Attributes map[string]any
}

// CreateQuoteInput represents input for quote creation.
type CreateQuoteInput struct {
	CustomerRef string
	Lines       []QuoteLineInput
}

// QuoteServiceConfig controls quote creation behavior.
type QuoteServiceConfig struct {
	ValidityWindow time.Duration
}

// DefaultQuoteServiceConfig returns the default configuration.
func DefaultQuoteServiceConfig() QuoteServiceConfig {
	return QuoteServiceConfig{ValidityWindow: 24 * time.Hour}
}

// QuoteService prices quote requests against the catalog and persists them
// atomically. A quote either exists in full (header plus every line, totals
// consistent) or not at all.
type QuoteService struct {
	tx       TxRunner
	reader   QuoteReader
	idGen    QuoteIDGenerator
	archiver QuoteArchiver
	cfg      QuoteServiceConfig
}

// NewQuoteService creates a QuoteService. archiver may be nil to disable
// off-database archiving.
func NewQuoteService(tx TxRunner, reader QuoteReader, idGen QuoteIDGenerator, archiver QuoteArchiver, cfg QuoteServiceConfig) *QuoteService {
	if cfg.ValidityWindow <= 0 {
		cfg.ValidityWindow = DefaultQuoteServiceConfig().ValidityWindow
	}
	if idGen == nil {
		idGen = &DefaultQuoteIDGenerator{}
	}
	return &QuoteService{
		tx:       tx,
		reader:   reader,
		idGen:    idGen,
		archiver: archiver,
		cfg:      cfg,
	}
}

// CreateQuote validates the request, snapshots current catalog prices,
// applies the pricing policy and persists the quote with all lines in one
// transaction. Returns the new quote id on success.
func (s *QuoteService) CreateQuote(ctx context.Context, input CreateQuoteInput) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "QuoteService.CreateQuote", telemetry.SpanAttributes{
		Operation: "create_quote",
	})
	defer span.End()

	if err := validateQuoteInput(input); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	quote := &domain.Quote{
		ID:          s.idGen.NewQuoteID(),
		CustomerRef: input.CustomerRef,
		ValidUntil:  now.Add(s.cfg.ValidityWindow),
		Notes:       []string{domain.DefaultQuoteNote},
		CreatedAt:   now,
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		policy, err := repos.Policy().GetPolicy(ctx)
		if err != nil {
			return err
		}

		listTotal := 0.0
		lines := make([]domain.QuoteLine, 0, len(input.Lines))
		for i, line := range input.Lines {
			product, err := repos.Products().GetBySKU(ctx, line.SKU)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					return domain.NewUnknownSKUError(i+1, line.SKU)
				}
				return err
			}

			// Snapshot name and price now; later catalog changes must never
			// alter this quote.
			lineTotal := product.UnitPrice * float64(line.Qty)
			listTotal += lineTotal
			lines = append(lines, domain.QuoteLine{
				QuoteID:    quote.ID,
				LineNumber: i + 1,
				SKU:        product.SKU,
				Name:       product.Name,
				Qty:        line.Qty,
				UnitPrice:  product.UnitPrice,
				LineTotal:  lineTotal,
				Attributes: line.Attributes,
			})
		}

		quote.Lines = lines
		quote.ListTotal = listTotal
		quote.TransferTotal = policy.TransferTotal(listTotal)
		quote.InstallmentsTotal = policy.InstallmentsTotal(listTotal)

		// Header and lines are written with final totals inside this
		// transaction; no reader can observe placeholder totals.
		return repos.Quotes().CreateQuote(ctx, quote)
	})
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return "", err
		}
		return "", domain.NewStorageFault("quote creation failed", err)
	}

	s.archive(quote)

	return quote.ID, nil
}

// GetQuote returns a quote with its lines ordered by line number ascending.
func (s *QuoteService) GetQuote(ctx context.Context, quoteID string) (*domain.Quote, error) {
	ctx, span := telemetry.StartSpan(ctx, "QuoteService.GetQuote", telemetry.SpanAttributes{
		QuoteID:   quoteID,
		Operation: "get_quote",
	})
	defer span.End()

	if strings.TrimSpace(quoteID) == "" {
		return nil, domain.ErrQuoteNotFound
	}
	return s.reader.GetByID(ctx, quoteID)
}

func validateQuoteInput(input CreateQuoteInput) error {
	if strings.TrimSpace(input.CustomerRef) == "" {
		return domain.ErrEmptyCustomerRef
	}

	if len(input.Lines) == 0 {
		return domain.ErrEmptyQuoteLines
	}

	for i, line := range input.Lines {
		if strings.TrimSpace(line.SKU) == "" {
			return domain.NewInvalidLineError(i+1, "SKU must be a non-empty string")
		}
		if line.Qty <= 0 {
			return domain.NewInvalidLineError(i+1, "quantity must be a positive integer")
		}
	}

	return nil
}

// archive pushes a committed quote to the archiver, best effort. The quote
// is already durable in the database; an archive failure is logged, never
// surfaced.
func (s *QuoteService) archive(quote *domain.Quote) {
	if s.archiver == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.archiver.ArchiveQuote(ctx, quote); err != nil {
			log.Printf("failed to archive quote %s: %v", quote.ID, err)
		}
	}()
}
