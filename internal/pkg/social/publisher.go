package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/postpilot/postpilot/app/models"
)

// FlowState is one step of the publish flow. Transitions are
// preview -> confirm -> publishing -> success | error; success and error are
// terminal for the invocation, a retry starts a fresh flow and a fresh
// audit row.
type FlowState string

const (
	FlowPreview    FlowState = "preview"
	FlowConfirm    FlowState = "confirm"
	FlowPublishing FlowState = "publishing"
	FlowSuccess    FlowState = "success"
	FlowError      FlowState = "error"
)

// Flow enforces the publish step order. Publishing is irreversible on the
// platform, so confirm must be an explicit step between previewing content
// and the network call.
type Flow struct {
	state FlowState
}

func NewFlow() *Flow {
	return &Flow{state: FlowPreview}
}

func (f *Flow) State() FlowState {
	return f.state
}

// Confirm moves preview -> confirm. Content above the platform limit cannot
// leave preview.
func (f *Flow) Confirm(content string) error {
	if f.state != FlowPreview {
		return fmt.Errorf("cannot confirm from state %q", f.state)
	}
	if len([]rune(content)) > PostCharacterLimit {
		return ErrContentTooLong
	}
	f.state = FlowConfirm
	return nil
}

func (f *Flow) beginPublishing() error {
	if f.state != FlowConfirm {
		return fmt.Errorf("cannot publish from state %q", f.state)
	}
	f.state = FlowPublishing
	return nil
}

func (f *Flow) finish(success bool) {
	if success {
		f.state = FlowSuccess
	} else {
		f.state = FlowError
	}
}

// Preview summarizes what a publish would do: the content alongside the
// account it would post as.
type Preview struct {
	Content        string `json:"content"`
	CharacterCount int    `json:"character_count"`
	CharacterLimit int    `json:"character_limit"`
	ProfileName    string `json:"profile_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	TokenExpired   bool   `json:"token_expired"`
}

// Publisher runs confirmed publishes against the platform and audits every
// outcome.
type Publisher struct {
	repo   Repository
	client PlatformClient

	now func() time.Time
}

func NewPublisher(repo Repository, client PlatformClient) *Publisher {
	return &Publisher{
		repo:   repo,
		client: client,
		now:    time.Now,
	}
}

// Preview builds the pre-confirm summary. ErrNotConnected when the user has
// no connection; overlong content is reported via the count fields rather
// than an error so the UI can show how far over the limit it is.
func (p *Publisher) Preview(userID uint, content string) (*Preview, error) {
	conn, err := p.repo.GetConnectionByUser(userID)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Content:        content,
		CharacterCount: len([]rune(content)),
		CharacterLimit: PostCharacterLimit,
		ProfileName:    conn.ProfileName,
		ProfilePicture: conn.ProfilePicture,
		TokenExpired:   IsExpired(conn.ExpiresAt, p.now()),
	}, nil
}

// Publish runs one confirmed publish invocation.
//
// Guards run in order: no connection fails immediately with ErrNotConnected
// and records nothing, since there is no connection to audit against; past
// that guard every outcome, expired token included, writes exactly one
// PublishAttempt. An expired token never reaches the network. The platform
// call itself is never retried automatically. On success last_used_at is
// updated on the connection.
//
// The audit write survives caller cancellation: an abandoned in-flight
// publish still resolves to a recorded attempt.
func (p *Publisher) Publish(ctx context.Context, userID uint, content string) (*models.PublishAttempt, error) {
	flow := NewFlow()
	if err := flow.Confirm(content); err != nil {
		return nil, err
	}

	conn, err := p.repo.GetConnectionByUser(userID)
	if err != nil {
		return nil, err
	}

	if err := flow.beginPublishing(); err != nil {
		return nil, err
	}

	now := p.now()
	attempt := &models.PublishAttempt{
		UUID:              uuid.NewString(),
		UserID:            userID,
		ExternalAccountID: conn.ExternalAccountID,
		Content:           content,
		PublishedAt:       now,
	}

	if IsExpired(conn.ExpiresAt, now) {
		attempt.Success = false
		attempt.Error = ErrTokenExpired.Error()
		flow.finish(false)
		p.recordAttempt(ctx, attempt)
		return attempt, ErrTokenExpired
	}

	result, postErr := p.client.CreatePost(ctx, conn.AccessToken, conn.ExternalAccountID, content)
	if postErr != nil {
		attempt.Success = false
		attempt.Error = postErr.Error()
		flow.finish(false)
		p.recordAttempt(ctx, attempt)
		if errors.Is(postErr, ErrTokenExpired) {
			return attempt, ErrTokenExpired
		}
		return attempt, postErr
	}

	attempt.Success = true
	attempt.ExternalPostID = result.PostID
	attempt.PostURL = result.PostURL
	flow.finish(true)
	p.recordAttempt(ctx, attempt)

	if err := p.repo.TouchLastUsed(userID, now); err != nil {
		log.Printf("[Social] could not update last_used_at for user %d: %v", userID, err)
	}
	return attempt, nil
}

// recordAttempt writes the audit row on a context detached from the
// caller's cancellation.
func (p *Publisher) recordAttempt(ctx context.Context, attempt *models.PublishAttempt) {
	if err := p.repo.CreatePublishAttempt(context.WithoutCancel(ctx), attempt); err != nil {
		log.Printf("[Social] could not record publish attempt %s: %v", attempt.UUID, err)
	}
}
