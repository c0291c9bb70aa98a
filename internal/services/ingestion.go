package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"wallit/internal/config"
	"wallit/internal/db"
	"wallit/internal/models"
	"wallit/internal/statement"
	"wallit/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrEmptyUpload = errors.New("no files were provided")
	// ErrInvalidTransaction marks a record that parsed but breaks a
	// transaction invariant (zero amount, unsupported currency, future
	// date). Fails its file only.
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// StatementFile is one uploaded statement: the declared bank origin, the
// client-supplied filename and the opened content stream.
type StatementFile struct {
	Origin   string
	Filename string
	Content  io.ReadCloser
}

// UploadOutcome reports an upload per file. Both maps are always present,
// even when empty, so clients can render deterministic diagnostics.
type UploadOutcome struct {
	Amount  int               `json:"amount"`
	Info    string            `json:"info"`
	Failed  map[string]string `json:"failed"`
	Success map[string]string `json:"success"`
}

// IngestionService drives a multi-file statement upload: validate against
// the registry, parse, attach identity, convert into the owner's main
// currency and stage. Files fail independently; staged transactions are
// persisted in a single batch at the end.
type IngestionService struct {
	cfg          config.Config
	registry     *statement.Registry
	converter    *Converter
	txRunner     db.TxRunner
	users        UserStore
	transactions TransactionStore
	hub          EventHub
	now          func() time.Time
}

func NewIngestionService(cfg config.Config, registry *statement.Registry, converter *Converter, txRunner db.TxRunner, users UserStore, transactions TransactionStore, hub EventHub) *IngestionService {
	return &IngestionService{
		cfg:          cfg,
		registry:     registry,
		converter:    converter,
		txRunner:     txRunner,
		users:        users,
		transactions: transactions,
		hub:          hub,
		now:          time.Now,
	}
}

func (s *IngestionService) Upload(ctx context.Context, userID string, files []StatementFile) (UploadOutcome, error) {
	defer func() {
		for _, file := range files {
			if file.Content != nil {
				_ = file.Content.Close()
			}
		}
	}()

	outcome := UploadOutcome{
		Failed:  make(map[string]string),
		Success: make(map[string]string),
	}

	named := false
	for _, file := range files {
		if statement.SanitizeFilename(file.Filename) != "" {
			named = true
			break
		}
	}
	if !named {
		return outcome, ErrEmptyUpload
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return outcome, err
	}

	var batch []models.Transaction
	for index, file := range files {
		filename := statement.SanitizeFilename(file.Filename)
		if filename == "" {
			filename = fmt.Sprintf("statement_%d", index+1)
		}

		if err := s.registry.Validate(file.Origin, filename); err != nil {
			if errors.Is(err, statement.ErrUnknownOrigin) {
				return outcome, err
			}
			outcome.Failed[filename] = file.Origin
			continue
		}
		entry, err := s.registry.Lookup(file.Origin)
		if err != nil {
			return outcome, err
		}

		parsed, err := entry.Parser.Parse(file.Content)
		if err != nil {
			outcome.Failed[filename] = file.Origin
			continue
		}

		// Conversion is all-or-nothing per file: no partial rows may
		// leak into the batch from a file that fails here.
		staged, err := s.buildTransactions(ctx, user, entry.BankID, parsed)
		if err != nil {
			outcome.Failed[filename] = file.Origin
			continue
		}
		batch = append(batch, staged...)
		outcome.Success[filename] = file.Origin
	}

	if len(batch) > 0 {
		err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			return s.transactions.AddAll(ctx, tx, batch)
		})
		if err != nil {
			return outcome, err
		}
	}

	outcome.Amount = len(batch)
	if s.hub != nil && outcome.Amount > 0 {
		s.hub.Broadcast(userID, websocket.Event{Type: websocket.EventTransactionsImported, Amount: outcome.Amount})
	}
	return outcome, nil
}

func (s *IngestionService) buildTransactions(ctx context.Context, user models.User, bankID string, parsed []statement.ParsedTransaction) ([]models.Transaction, error) {
	now := s.now()
	staged := make([]models.Transaction, 0, len(parsed))
	for _, record := range parsed {
		if err := s.checkInvariants(record, now); err != nil {
			return nil, err
		}
		mainAmount, err := s.converter.Convert(ctx, record.BaseAmount, record.BaseCurrency, user.MainCurrency, record.TransactionDate)
		if err != nil {
			return nil, err
		}
		bank := bankID
		staged = append(staged, models.Transaction{
			ID:              uuid.NewString(),
			Info:            record.Info,
			Title:           record.Title,
			Place:           record.Place,
			BaseAmount:      record.BaseAmount,
			BaseCurrency:    record.BaseCurrency,
			MainAmount:      mainAmount,
			TransactionDate: record.TransactionDate,
			CreationDate:    now,
			UserID:          user.ID,
			BankID:          &bank,
		})
	}
	return staged, nil
}

func (s *IngestionService) checkInvariants(record statement.ParsedTransaction, now time.Time) error {
	if record.BaseAmount.IsZero() {
		return fmt.Errorf("%w: zero amount", ErrInvalidTransaction)
	}
	if !s.cfg.Supported(record.BaseCurrency) {
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidTransaction, record.BaseCurrency)
	}
	if record.TransactionDate.After(now) {
		return fmt.Errorf("%w: transaction date is in the future", ErrInvalidTransaction)
	}
	return nil
}
