package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"leicca/internal/auditlog"
	"leicca/internal/auditlog/handler"
	"leicca/internal/capsule"
	"leicca/internal/platform/logger"
	dErrors "leicca/pkg/domain-errors"
)

type stubDecryptor struct{}

func (stubDecryptor) Decrypt(ctx context.Context, encryptedHex string) (*capsule.AuditCapsule, error) {
	switch encryptedHex {
	case "":
		return nil, dErrors.New(dErrors.CodeInvalidInput, "encrypted payload is empty")
	case "deadbeef":
		return capsule.Build(nil, nil, nil, "rec-001", "leicca", "classification",
			time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	default:
		return nil, dErrors.New(dErrors.CodeIntegrity, "payload could not be decrypted")
	}
}

type HandlerSuite struct {
	suite.Suite
	service *auditlog.Service
	router  chi.Router
}

func (s *HandlerSuite) SetupTest() {
	s.service = auditlog.NewService(auditlog.NewMemoryStore(), stubDecryptor{})
	h := handler.New(s.service, logger.New())
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) seedTrail() {
	ctx := context.Background()
	fixtures := []auditlog.AuditEvent{
		{EventType: auditlog.EventAnchorSucceeded, ReferenceID: "rec-001", Description: "capsule anchored", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{EventType: auditlog.EventAnchorFailed, ReferenceID: "rec-002", Description: "anchoring failed", CreatedAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)},
		{EventType: auditlog.EventCapsuleDecrypted, ReferenceID: "rec-001", Description: "capsule decrypted", CreatedAt: time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)},
	}
	for _, ev := range fixtures {
		_, err := s.service.Record(ctx, ev)
		s.Require().NoError(err)
	}
}

func (s *HandlerSuite) listEvents(query string) []auditlog.AuditEvent {
	req := httptest.NewRequest(http.MethodGet, "/audit/events"+query, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Events []auditlog.AuditEvent `json:"events"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Events
}

func (s *HandlerSuite) TestListAll() {
	s.seedTrail()
	events := s.listEvents("")
	s.Require().Len(events, 3)
	s.Equal("rec-001", events[0].ReferenceID)
	s.Equal("rec-002", events[1].ReferenceID)
}

func (s *HandlerSuite) TestListEmptyTrail() {
	events := s.listEvents("")
	s.Empty(events)
}

func (s *HandlerSuite) TestListFilteredByType() {
	s.seedTrail()
	events := s.listEvents("?eventType=" + auditlog.EventAnchorFailed)
	s.Require().Len(events, 1)
	s.Equal("rec-002", events[0].ReferenceID)
}

func (s *HandlerSuite) TestListFilteredByDateRange() {
	s.seedTrail()
	events := s.listEvents("?dateStart=2026-03-02&dateEnd=2026-03-03")
	s.Require().Len(events, 2)
	s.Equal("rec-002", events[0].ReferenceID)
	s.Equal("rec-001", events[1].ReferenceID)
}

func (s *HandlerSuite) TestListFilteredBySearch() {
	s.seedTrail()
	events := s.listEvents("?search=DECRYPTED")
	s.Require().Len(events, 1)
	s.Equal(auditlog.EventCapsuleDecrypted, events[0].EventType)
}

func (s *HandlerSuite) TestListRejectsBadDate() {
	req := httptest.NewRequest(http.MethodGet, "/audit/events?dateStart=yesterday", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) postDecrypt(body handler.DecryptRequest) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/audit/decrypt", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestDecryptReturnsCapsule() {
	rec := s.postDecrypt(handler.DecryptRequest{EncryptedHex: "deadbeef"})
	s.Require().Equal(http.StatusOK, rec.Code)

	var decoded capsule.AuditCapsule
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &decoded))
	s.Equal("rec-001", decoded.Metadata.RecordID)
	s.Equal(capsule.Version, decoded.Version)
}

func (s *HandlerSuite) TestDecryptEmptyPayload() {
	rec := s.postDecrypt(handler.DecryptRequest{})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestDecryptCorruptedPayload() {
	rec := s.postDecrypt(handler.DecryptRequest{EncryptedHex: "ffff"})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}
