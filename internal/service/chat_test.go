package service

import (
	"errors"
	"testing"

	"poker_web/internal/models"
)

func newTestChatService(t *testing.T) (*ChatService, *fakeMessageRepo, *fakeReactionRepo, *fakeBroadcaster) {
	t.Helper()
	sessionRepo := newFakeSessionRepo()
	session := models.NewSession("room-1", map[string]string{"a": "Alice", "b": "Bob"})
	if err := sessionRepo.Create(session); err != nil {
		t.Fatalf("seed session error: %v", err)
	}

	messageRepo := newFakeMessageRepo()
	reactionRepo := newFakeReactionRepo()
	broadcaster := newFakeBroadcaster()
	return NewChatService(messageRepo, reactionRepo, sessionRepo, broadcaster), messageRepo, reactionRepo, broadcaster
}

func TestSendRejectsEmptyAfterStrip(t *testing.T) {
	svc, _, _, broadcaster := newTestChatService(t)

	for _, body := range []string{"", "   ", "<p></p>", "<br/> <b> </b>"} {
		if _, err := svc.Send("room-1", 1, "a", "Alice", body, nil); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("body %q: err = %v, want ErrEmptyMessage", body, err)
		}
	}
	if len(broadcaster.records()) != 0 {
		t.Fatalf("rejected send must not broadcast")
	}
}

func TestSendRejectsHistoricalRound(t *testing.T) {
	svc, _, _, _ := newTestChatService(t)

	// 會話的即時回合是 1，向回合 0 發送視為歷史視圖
	if _, err := svc.Send("room-1", 0, "a", "Alice", "hello", nil); !errors.Is(err, ErrHistoricalRound) {
		t.Fatalf("err = %v, want ErrHistoricalRound", err)
	}
}

func TestSendBroadcastsOnChatTopic(t *testing.T) {
	svc, _, _, broadcaster := newTestChatService(t)

	message, err := svc.Send("room-1", 1, "a", "Alice", "<p>hello</p>", nil)
	if err != nil {
		t.Fatalf("send error: %v", err)
	}
	if message.ID == 0 {
		t.Fatalf("message not persisted")
	}

	records := broadcaster.records()
	if len(records) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(records))
	}
	if records[0].topic != ChatTopic("room-1", 1) {
		t.Fatalf("topic = %q, want %q", records[0].topic, ChatTopic("room-1", 1))
	}
	if records[0].event.Type != models.EventChatMessage {
		t.Fatalf("event type = %s", records[0].event.Type)
	}
}

func TestFetchHistoryDenormalizesReply(t *testing.T) {
	svc, _, _, _ := newTestChatService(t)

	original, err := svc.Send("room-1", 1, "a", "Alice", "original message", nil)
	if err != nil {
		t.Fatalf("send error: %v", err)
	}
	if _, err := svc.Send("room-1", 1, "b", "Bob", "a reply", &original.ID); err != nil {
		t.Fatalf("reply error: %v", err)
	}

	views, err := svc.FetchHistory("room-1", 1)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("messages = %d, want 2", len(views))
	}
	reply := views[1]
	if reply.ReplyTo == nil {
		t.Fatalf("reply snapshot missing")
	}
	if reply.ReplyTo.AuthorName != "Alice" || reply.ReplyTo.Excerpt != "original message" {
		t.Fatalf("snapshot = %+v", reply.ReplyTo)
	}
}

func TestFetchHistoryFiltersRound(t *testing.T) {
	svc, messageRepo, _, _ := newTestChatService(t)

	if _, err := svc.Send("room-1", 1, "a", "Alice", "round one", nil); err != nil {
		t.Fatalf("send error: %v", err)
	}
	// 直接放入另一回合的消息，模擬歷史回合
	if err := messageRepo.Create(&models.ChatMessage{
		SessionID: 1, RoundNumber: 2, AuthorID: "b", AuthorName: "Bob", Body: "round two",
	}); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	views, err := svc.FetchHistory("room-1", 1)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(views) != 1 || views[0].Body != "round one" {
		t.Fatalf("round filter broken: %+v", views)
	}
}

func TestReactionUpsertKeepsOnePerUser(t *testing.T) {
	svc, _, reactionRepo, _ := newTestChatService(t)

	message, err := svc.Send("room-1", 1, "a", "Alice", "react to me", nil)
	if err != nil {
		t.Fatalf("send error: %v", err)
	}

	if err := svc.AddReaction("room-1", message.ID, "b", "Bob", "👍"); err != nil {
		t.Fatalf("add reaction error: %v", err)
	}
	if err := svc.AddReaction("room-1", message.ID, "b", "Bob", "🎉"); err != nil {
		t.Fatalf("change reaction error: %v", err)
	}

	reactions, _ := reactionRepo.FindByMessageID(message.ID)
	if len(reactions) != 1 {
		t.Fatalf("reactions = %d, want 1", len(reactions))
	}
	if reactions[0].Emoji != "🎉" {
		t.Fatalf("emoji = %q, want 🎉", reactions[0].Emoji)
	}
}

func TestRemoveReaction(t *testing.T) {
	svc, _, reactionRepo, _ := newTestChatService(t)

	message, err := svc.Send("room-1", 1, "a", "Alice", "react to me", nil)
	if err != nil {
		t.Fatalf("send error: %v", err)
	}
	if err := svc.AddReaction("room-1", message.ID, "b", "Bob", "👍"); err != nil {
		t.Fatalf("add reaction error: %v", err)
	}
	if err := svc.RemoveReaction("room-1", message.ID, "b"); err != nil {
		t.Fatalf("remove reaction error: %v", err)
	}

	reactions, _ := reactionRepo.FindByMessageID(message.ID)
	if len(reactions) != 0 {
		t.Fatalf("reactions = %d, want 0", len(reactions))
	}
}

func TestReactionRejectsHistoricalRound(t *testing.T) {
	svc, _, reactionRepo, broadcaster := newTestChatService(t)

	message, err := svc.Send("room-1", 1, "a", "Alice", "react to me", nil)
	if err != nil {
		t.Fatalf("send error: %v", err)
	}
	if err := svc.AddReaction("room-1", message.ID, "b", "Bob", "👍"); err != nil {
		t.Fatalf("add reaction error: %v", err)
	}

	// 回合推進後，回合 1 的消息成為歷史存檔
	session, err := svc.sessionRepo.FindByRoomKey("room-1")
	if err != nil {
		t.Fatalf("session error: %v", err)
	}
	session.RoundNumber = 2
	if err := svc.sessionRepo.Update(session); err != nil {
		t.Fatalf("update error: %v", err)
	}
	before := len(broadcaster.records())

	if err := svc.AddReaction("room-1", message.ID, "a", "Alice", "🎉"); !errors.Is(err, ErrHistoricalRound) {
		t.Fatalf("add err = %v, want ErrHistoricalRound", err)
	}
	if err := svc.RemoveReaction("room-1", message.ID, "b"); !errors.Is(err, ErrHistoricalRound) {
		t.Fatalf("remove err = %v, want ErrHistoricalRound", err)
	}

	reactions, _ := reactionRepo.FindByMessageID(message.ID)
	if len(reactions) != 1 || reactions[0].Emoji != "👍" {
		t.Fatalf("archived reactions mutated: %+v", reactions)
	}
	if len(broadcaster.records()) != before {
		t.Fatalf("rejected reaction must not broadcast")
	}
}

func TestStripMarkup(t *testing.T) {
	cases := map[string]string{
		"<p>hello</p>":          "hello",
		"plain":                 "plain",
		"<b>a</b> <i>b</i>":     "a b",
		"  <div>  </div>  ":     "",
		"<a href=\"x\">link</a>": "link",
	}
	for in, want := range cases {
		if got := StripMarkup(in); got != want {
			t.Fatalf("StripMarkup(%q) = %q, want %q", in, got, want)
		}
	}
}
