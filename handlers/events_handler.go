package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"postStreakAPI/internal/apperror"
	"postStreakAPI/internal/types/event"
	"postStreakAPI/services"
)

type EventsHandler struct {
	streakService *services.StreakService
	signingSecret string
}

func NewEventsHandler(streakService *services.StreakService, signingSecret string) *EventsHandler {
	return &EventsHandler{
		streakService: streakService,
		signingSecret: signingSecret,
	}
}

// HandleSlackEvents receives Slack Events API callbacks: the one-time URL
// verification handshake and message event callbacks for the monitored
// channel. Message events are acked immediately and processed in the
// background; Slack expects a response within three seconds and does not
// redeliver reliably anyway.
func (h *EventsHandler) HandleSlackEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading event body: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.verifySignature(r.Header, body); err != nil {
		log.Printf("Invalid Slack signature: %v", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		log.Printf("Error parsing event payload: %v", err)
		respondWithError(w, http.StatusBadRequest, "Error parsing event")
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			respondWithError(w, http.StatusBadRequest, "Error parsing challenge")
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		if msgEvent, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.MessageEvent); ok {
			msg := event.Message{
				ID:       msgEvent.TimeStamp,
				Channel:  msgEvent.Channel,
				UserID:   msgEvent.User,
				Subtype:  msgEvent.SubType,
				BotID:    msgEvent.BotID,
				ThreadTS: msgEvent.ThreadTimeStamp,
				TS:       msgEvent.TimeStamp,
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := h.streakService.HandleMessage(ctx, msg); err != nil {
					log.Printf("HandleSlackEvents: event %s dropped (%s): %v", msg.TS, apperror.Kind(err), err)
				}
			}()
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})

	default:
		log.Printf("Unhandled Slack event type: %s", eventsAPIEvent.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *EventsHandler) verifySignature(header http.Header, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write(body); err != nil {
		return err
	}
	return verifier.Ensure()
}
