package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/dto"
	"github.com/haneulsoft/kinderledger/internal/handlers"
	"github.com/haneulsoft/kinderledger/internal/platform/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetEntry(ctx context.Context, kindergartenID, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, kindergartenID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, kindergartenID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, kindergartenID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockLedgerService) RejournalEntry(ctx context.Context, kindergartenID, entryID, accountID, userID string) error {
	args := m.Called(ctx, kindergartenID, entryID, accountID, userID)
	return args.Error(0)
}

func (m *MockLedgerService) DeleteEntry(ctx context.Context, kindergartenID, entryID string) error {
	args := m.Called(ctx, kindergartenID, entryID)
	return args.Error(0)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock SplitService ---
type MockSplitService struct {
	mock.Mock
}

func (m *MockSplitService) SplitEntry(ctx context.Context, kindergartenID, entryID string, req dto.SplitRequest, userID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, kindergartenID, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

var _ portssvc.SplitSvcFacade = (*MockSplitService)(nil)

// --- Test Suite ---
type EntryHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *MockLedgerService
	mockSplitService  *MockSplitService
	jwtSecret         string
}

func (suite *EntryHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "kinderledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *EntryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockLedgerService = new(MockLedgerService)
	suite.mockSplitService = new(MockSplitService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret}
	container := &portssvc.ServiceContainer{
		Ledger:   suite.mockLedgerService,
		Splitter: suite.mockSplitService,
	}
	transmitLimiter := limiter.New(memorystore.NewStore(), limiter.Rate{Period: time.Minute, Limit: 100})
	handlers.RegisterRoutes(suite.router, cfg, container, transmitLimiter)
}

func (suite *EntryHandlerTestSuite) doRequest(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *EntryHandlerTestSuite) TestGetEntry_Success() {
	kindergartenID := uuid.NewString()
	entryID := uuid.NewString()
	token := suite.generateTestToken(uuid.NewString())

	expected := &domain.LedgerEntry{
		EntryID:            entryID,
		KindergartenID:     kindergartenID,
		PeriodKey:          domain.PeriodKey("2026-02"),
		Kind:               domain.Income,
		Amount:             850000,
		AccountID:          "ac1",
		Description:        "2월 원비",
		TransmissionStatus: domain.Unsent,
	}
	suite.mockLedgerService.On("GetEntry", mock.Anything, kindergartenID, entryID).Return(expected, nil).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/kindergartens/%s/entries/%s", kindergartenID, entryID), token, nil)

	suite.Equal(http.StatusOK, w.Code)
	var got domain.LedgerEntry
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(expected.EntryID, got.EntryID)
	suite.Equal(expected.Amount, got.Amount)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestGetEntry_NotFound() {
	kindergartenID := uuid.NewString()
	entryID := uuid.NewString()
	token := suite.generateTestToken(uuid.NewString())

	suite.mockLedgerService.On("GetEntry", mock.Anything, kindergartenID, entryID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/kindergartens/%s/entries/%s", kindergartenID, entryID), token, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *EntryHandlerTestSuite) TestGetEntry_Unauthorized() {
	w := suite.doRequest(http.MethodGet, "/api/v1/kindergartens/kg1/entries/e1", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "GetEntry")
}

func (suite *EntryHandlerTestSuite) TestRejournalEntry_LockedConflict() {
	kindergartenID := uuid.NewString()
	entryID := uuid.NewString()
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)

	suite.mockLedgerService.On("RejournalEntry", mock.Anything, kindergartenID, entryID, "ac9", userID).
		Return(apperrors.ErrPeriodLocked).Once()

	body, _ := json.Marshal(dto.RejournalRequest{AccountID: "ac9"})
	w := suite.doRequest(http.MethodPut, fmt.Sprintf("/api/v1/kindergartens/%s/entries/%s/account", kindergartenID, entryID), token, body)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "closed period")
}

func (suite *EntryHandlerTestSuite) TestSplitEntry_MismatchReturnsDetail() {
	kindergartenID := uuid.NewString()
	entryID := uuid.NewString()
	token := suite.generateTestToken(uuid.NewString())

	req := dto.SplitRequest{Allocations: []dto.SplitAllocation{
		{AccountID: "ac9", Amount: 700000, Description: "급식 재료"},
		{AccountID: "ac10", Amount: 100000, Description: "학습 교구"},
	}}
	suite.mockSplitService.On("SplitEntry", mock.Anything, kindergartenID, entryID, req, mock.Anything).
		Return(nil, &apperrors.SplitMismatchError{SourceAmount: 850000, Allocated: 800000}).Once()

	body, _ := json.Marshal(req)
	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/kindergartens/%s/entries/%s/split", kindergartenID, entryID), token, body)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp struct {
		Detail dto.SplitMismatchDetail `json:"detail"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(850000), resp.Detail.SourceAmount)
	suite.Equal(int64(800000), resp.Detail.Allocated)
	suite.Equal(int64(50000), resp.Detail.Difference)
}

func (suite *EntryHandlerTestSuite) TestSplitEntry_TooFewAllocations() {
	token := suite.generateTestToken(uuid.NewString())

	body, _ := json.Marshal(dto.SplitRequest{Allocations: []dto.SplitAllocation{
		{AccountID: "ac9", Amount: 850000, Description: "단일 배분"},
	}})
	w := suite.doRequest(http.MethodPost, "/api/v1/kindergartens/kg1/entries/e1/split", token, body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockSplitService.AssertNotCalled(suite.T(), "SplitEntry")
}

func (suite *EntryHandlerTestSuite) TestListEntries_RequiresPeriodKey() {
	token := suite.generateTestToken(uuid.NewString())

	w := suite.doRequest(http.MethodGet, "/api/v1/kindergartens/kg1/entries", token, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "ListEntries")
}

func TestEntryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(EntryHandlerTestSuite))
}
