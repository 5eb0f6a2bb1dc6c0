package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// Store persists a draft somewhere the landlord can review and send it.
type Store interface {
	SaveDraft(ctx context.Context, draft *Draft) error
}

// IMAPStore appends drafts to the account's drafts mailbox, located via the
// \Drafts special-use attribute.
type IMAPStore struct {
	Addr     string // host:port, TLS
	Username string
	Password string
	Logger   *slog.Logger
}

func NewIMAPStore(addr, username, password string, logger *slog.Logger) *IMAPStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &IMAPStore{Addr: addr, Username: username, Password: password, Logger: logger}
}

func (s *IMAPStore) SaveDraft(ctx context.Context, draft *Draft) error {
	raw, err := draft.Bytes()
	if err != nil {
		return fmt.Errorf("serialize draft: %w", err)
	}

	c, err := client.DialTLS(s.Addr, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.Addr, err)
	}
	defer func() {
		if err := c.Logout(); err != nil {
			s.Logger.Warn("notify.imap.logout_failed", "error", err)
		}
	}()

	if err := c.Login(s.Username, s.Password); err != nil {
		return fmt.Errorf("imap login: %w", err)
	}

	mailbox, err := s.draftsMailbox(c)
	if err != nil {
		return err
	}

	literal := bytes.NewBuffer(raw)
	if err := c.Append(mailbox, []string{imap.DraftFlag}, time.Now(), literal); err != nil {
		return fmt.Errorf("append to %s: %w", mailbox, err)
	}
	s.Logger.Info("notify.imap.draft_saved", "mailbox", mailbox, "to", draft.To, "subject", draft.Subject)
	return nil
}

// draftsMailbox finds the mailbox flagged \Drafts, falling back to the
// conventional name when the server does not advertise special-use.
func (s *IMAPStore) draftsMailbox(c *client.Client) (string, error) {
	mailboxes := make(chan *imap.MailboxInfo, 32)
	done := make(chan error, 1)
	go func() {
		done <- c.List("", "*", mailboxes)
	}()

	name := ""
	for m := range mailboxes {
		for _, attr := range m.Attributes {
			if attr == imap.DraftsAttr {
				name = m.Name
			}
		}
	}
	if err := <-done; err != nil {
		return "", fmt.Errorf("list mailboxes: %w", err)
	}
	if name == "" {
		name = "Drafts"
	}
	return name, nil
}

// LogStore is the test-mode drafts store: it logs what would have been
// saved instead of talking to a server.
type LogStore struct {
	Logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogStore{Logger: logger}
}

func (s *LogStore) SaveDraft(_ context.Context, draft *Draft) error {
	names := make([]string, 0, len(draft.Attachments))
	for _, att := range draft.Attachments {
		names = append(names, att.Filename)
	}
	s.Logger.Info("notify.draft.test_mode",
		"to", draft.To,
		"subject", draft.Subject,
		"attachments", names,
		"body", draft.Body)
	return nil
}
