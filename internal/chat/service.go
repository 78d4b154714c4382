// Package chat drives one conversation turn end to end: classify the
// utterance, resolve the product context, run the offer engine through the
// session state machine, render the bot reply, and emit a transcript
// record. Handlers stay thin; everything testable lives here.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"negobot/internal/catalog"
	"negobot/internal/intent"
	"negobot/internal/model"
	"negobot/internal/offer"
	"negobot/internal/policy"
	"negobot/internal/search"
	"negobot/internal/session"
	"negobot/internal/transcript"
)

// Service wires the negotiation core to its collaborators.
type Service struct {
	catalog    catalog.Store
	policies   *policy.Store
	sessions   *session.Store
	classifier intent.Classifier
	recorder   transcript.Recorder
	index      *search.Index // nil disables browse search
	botName    string
	logger     *slog.Logger
}

// Config collects the Service dependencies.
type Config struct {
	Catalog    catalog.Store
	Policies   *policy.Store
	Sessions   *session.Store
	Classifier intent.Classifier
	Recorder   transcript.Recorder
	Index      *search.Index
	BotName    string
	Logger     *slog.Logger
}

// New creates the chat service.
func New(cfg Config) *Service {
	name := cfg.BotName
	if name == "" {
		name = "Kiki"
	}
	return &Service{
		catalog:    cfg.Catalog,
		policies:   cfg.Policies,
		sessions:   cfg.Sessions,
		classifier: cfg.Classifier,
		recorder:   cfg.Recorder,
		index:      cfg.Index,
		botName:    name,
		logger:     cfg.Logger,
	}
}

// Request is one user chat turn. ProductID is zero for general chat.
type Request struct {
	UserID    string `json:"user_id"`
	ProductID int64  `json:"product_id,omitempty"`
	Message   string `json:"message"`
}

// Response is the structured result of one turn.
type Response struct {
	Reply    string               `json:"reply"`
	Intent   intent.Intent        `json:"intent"`
	Decision *model.OfferDecision `json:"decision,omitempty"`
	Session  *session.Session     `json:"session,omitempty"`
	Results  []search.Result      `json:"results,omitempty"`
}

// Respond processes one chat turn. Engine failures never escape as errors:
// the shopper gets an apology and the session is left exactly as it was.
// Errors are reserved for invalid requests.
func (s *Service) Respond(ctx context.Context, req *Request) (*Response, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, model.NewValidationError("user_id", "required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, model.NewValidationError("message", "required")
	}

	cls, err := s.classifier.Classify(ctx, req.Message)
	if err != nil {
		// Both classifier paths down. Degrade to Unknown rather than
		// dropping the conversation.
		s.logger.Error("classification failed", slog.String("error", err.Error()))
		cls = intent.Classification{Intent: intent.Unknown}
	}

	resp := s.dispatch(ctx, req, cls)
	s.record(ctx, req, cls, resp)
	return resp, nil
}

func (s *Service) dispatch(ctx context.Context, req *Request, cls intent.Classification) *Response {
	switch cls.Intent {
	case intent.Greeting:
		return &Response{Intent: cls.Intent, Reply: s.greet(req.UserID)}

	case intent.StateOffer, intent.RequestDiscount:
		return s.negotiate(ctx, req, cls)

	case intent.AcceptCounter:
		return s.acceptCounter(req, cls)

	case intent.RejectCounter:
		return s.rejectCounter(req, cls)

	case intent.Browse:
		return s.browse(ctx, req, cls, cls.Query)

	default:
		// Unknown falls through to product search like any other
		// question about the catalog; without an index, re-prompt.
		if s.index != nil {
			return s.browse(ctx, req, cls, req.Message)
		}
		return &Response{Intent: cls.Intent, Reply: s.say("Sorry, I didn't catch that. You can ask about a product or make me an offer.")}
	}
}

// negotiate runs a price turn (numeric offer or bare discount request).
func (s *Service) negotiate(ctx context.Context, req *Request, cls intent.Classification) *Response {
	if req.ProductID == 0 {
		return &Response{Intent: cls.Intent, Reply: s.say("Pick a product first and I'll see what I can do on the price.")}
	}

	// Switching products mid-haggle abandons the other negotiations.
	s.sessions.AbandonExcept(req.UserID, req.ProductID)

	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		s.logger.Warn("product lookup failed",
			slog.Int64("product_id", req.ProductID),
			slog.String("error", err.Error()),
		)
		return &Response{Intent: cls.Intent, Reply: s.apology()}
	}

	pol := s.policies.Get()
	minimum, tag, err := offer.MinimumPrice(product, pol)
	if err != nil {
		// Invalid product state: the turn is rejected, the session is
		// not transitioned and the turn is not counted.
		s.logger.Warn("offer engine rejected product",
			slog.Int64("product_id", req.ProductID),
			slog.String("error", err.Error()),
		)
		return &Response{Intent: cls.Intent, Reply: s.apology()}
	}

	decision := offer.Decide(cls.Amount, minimum, tag)
	snap, err := s.sessions.Apply(req.UserID, req.ProductID, func(sess *session.Session) error {
		return sess.ApplyDecision(cls.Amount, decision)
	})
	if err != nil {
		s.logger.Error("session transition failed", slog.String("error", err.Error()))
		return &Response{Intent: cls.Intent, Reply: s.apology()}
	}

	return &Response{
		Intent:   cls.Intent,
		Decision: &decision,
		Session:  &snap,
		Reply:    s.renderDecision(product, decision),
	}
}

func (s *Service) acceptCounter(req *Request, cls intent.Classification) *Response {
	if req.ProductID == 0 {
		return &Response{Intent: cls.Intent, Reply: s.say("Which product are we talking about?")}
	}

	snap, err := s.sessions.Apply(req.UserID, req.ProductID, func(sess *session.Session) error {
		return sess.AcceptCounter()
	})
	if err != nil {
		return &Response{Intent: cls.Intent, Reply: s.say("There's no offer on the table yet - make me one!")}
	}

	decision := &model.OfferDecision{
		Outcome:       model.OutcomeAccepted,
		ResolvedPrice: *snap.ResolvedPrice,
		MinimumPrice:  *snap.ResolvedPrice,
	}
	return &Response{
		Intent:   cls.Intent,
		Decision: decision,
		Session:  &snap,
		Reply:    s.say(fmt.Sprintf("Deal! %s it is. Adding it to your cart.", model.FormatRupees(*snap.ResolvedPrice))),
	}
}

func (s *Service) rejectCounter(req *Request, cls intent.Classification) *Response {
	if req.ProductID == 0 {
		return &Response{Intent: cls.Intent, Reply: s.say("No problem. Let me know if anything else catches your eye.")}
	}

	snap, err := s.sessions.Apply(req.UserID, req.ProductID, func(sess *session.Session) error {
		if sess.LastCounter == nil {
			return model.NewValidationError("session", "no counter-offer to reject")
		}
		return sess.Reject()
	})
	if err != nil {
		return &Response{Intent: cls.Intent, Reply: s.say("No problem. Let me know if anything else catches your eye.")}
	}

	decision := &model.OfferDecision{Outcome: model.OutcomeRejected}
	return &Response{
		Intent:   cls.Intent,
		Decision: decision,
		Session:  &snap,
		Reply:    s.say("No hard feelings - that was truly my best price. Happy to help with anything else."),
	}
}

func (s *Service) browse(ctx context.Context, req *Request, cls intent.Classification, query string) *Response {
	// Wandering off to browse abandons any open negotiations.
	s.sessions.AbandonExcept(req.UserID, 0)

	if s.index == nil {
		return &Response{Intent: cls.Intent, Reply: s.say("Search is offline right now, but you can browse the product list.")}
	}

	results, err := s.index.Search(ctx, query, 3)
	if err != nil {
		s.logger.Warn("product search failed", slog.String("error", err.Error()))
		return &Response{Intent: cls.Intent, Reply: s.apology()}
	}
	if len(results) == 0 {
		return &Response{Intent: cls.Intent, Reply: s.say("I couldn't find anything matching that. Try different words?")}
	}

	best := results[0].Product
	return &Response{
		Intent:  cls.Intent,
		Results: results,
		Reply:   s.say(fmt.Sprintf("%s at %s - %s", best.Name, model.FormatRupees(best.Price), best.Description)),
	}
}

// renderDecision turns an engine decision into the bot's reply line.
func (s *Service) renderDecision(p *model.Product, d model.OfferDecision) string {
	switch d.Outcome {
	case model.OutcomeAccepted:
		return s.say(fmt.Sprintf("%s for %s - deal! Adding it to your cart.",
			p.Name, model.FormatRupees(d.ResolvedPrice)))
	default:
		switch d.Reasoning {
		case model.ReasonHighStockBand:
			return s.say(fmt.Sprintf("Plenty of stock on %s, so here's my best: %s final.",
				p.Name, model.FormatRupees(d.ResolvedPrice)))
		case model.ReasonMidStockBand:
			return s.say(fmt.Sprintf("Stock is limited on %s - I can do %s final.",
				p.Name, model.FormatRupees(d.ResolvedPrice)))
		case model.ReasonLowStockBand:
			return s.say(fmt.Sprintf("Only a few %s left, %s is the lowest I can go.",
				p.Name, model.FormatRupees(d.ResolvedPrice)))
		default:
			return s.say(fmt.Sprintf("%s is genuinely the floor for %s - I can't go under it.",
				model.FormatRupees(d.ResolvedPrice), p.Name))
		}
	}
}

// greet mirrors the storefront greeting: address the user by the local
// part of their email.
func (s *Service) greet(userID string) string {
	name := userID
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	return s.say(fmt.Sprintf("Hey %s! How can I help you with our products today?", name))
}

func (s *Service) apology() string {
	return s.say("Sorry, something went wrong on my side. Please try that again.")
}

func (s *Service) say(msg string) string {
	return fmt.Sprintf("%s: %s", s.botName, msg)
}

// record emits the turn's transcript entry. Best effort: a failed write is
// logged, never shown to the shopper.
func (s *Service) record(ctx context.Context, req *Request, cls intent.Classification, resp *Response) {
	now := time.Now().UTC()
	rec := &model.TurnRecord{
		ID:        transcript.NewID(now),
		Timestamp: now,
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Intent:    string(cls.Intent),
		UserOffer: cls.Amount,
		Utterance: req.Message,
		Reply:     resp.Reply,
	}
	if resp.Decision != nil {
		rec.Outcome = resp.Decision.Outcome
		if resp.Decision.ResolvedPrice != 0 {
			price := resp.Decision.ResolvedPrice
			rec.ResolvedPrice = &price
		}
	}
	if resp.Session != nil {
		rec.TurnCount = resp.Session.TurnCount
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.Warn("transcript write failed", slog.String("error", err.Error()))
	}
}
