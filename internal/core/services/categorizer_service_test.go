package services_test

import (
	"context"
	"testing"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	portssvc "github.com/haneulsoft/kinderledger/internal/core/ports/services"
	"github.com/haneulsoft/kinderledger/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RuleRepository ---
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) SaveKeywordRule(ctx context.Context, rule domain.KeywordRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KeywordRule), args.Error(1)
}

func (m *MockRuleRepository) DeleteKeywordRule(ctx context.Context, ruleID string) error {
	args := m.Called(ctx, ruleID)
	return args.Error(0)
}

func (m *MockRuleRepository) FindDefaultMapping(ctx context.Context, kindergartenID string) (*domain.DefaultAccountMapping, error) {
	args := m.Called(ctx, kindergartenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DefaultAccountMapping), args.Error(1)
}

func (m *MockRuleRepository) SaveDefaultMapping(ctx context.Context, mapping domain.DefaultAccountMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// --- Test Suite ---
type CategorizerServiceTestSuite struct {
	suite.Suite
	mockRepo *MockRuleRepository
	service  portssvc.CategorizerSvc
}

func (suite *CategorizerServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockRuleRepository)
	suite.service = services.NewCategorizerService(suite.mockRepo)
}

func (suite *CategorizerServiceTestSuite) TestCategorize_KeywordMatch() {
	ctx := context.Background()
	rules := []domain.KeywordRule{
		{RuleID: "r1", Keyword: "한국전력", AccountID: "ac8", Priority: 1},
		{RuleID: "r2", Keyword: "통신", AccountID: "ac12", Priority: 2},
	}
	suite.mockRepo.On("ListKeywordRules", ctx).Return(rules, nil).Once()

	accountID, err := suite.service.Categorize(ctx, "kg1", "한국전력 전기요금 납부", domain.DebitDirection)

	suite.Require().NoError(err)
	suite.Equal("ac8", accountID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CategorizerServiceTestSuite) TestCategorize_FirstMatchWins() {
	ctx := context.Background()
	// Both keywords appear in the description; the lower priority rule
	// must win regardless of rule specificity.
	rules := []domain.KeywordRule{
		{RuleID: "r1", Keyword: "요금", AccountID: "ac8", Priority: 1},
		{RuleID: "r2", Keyword: "통신요금", AccountID: "ac12", Priority: 2},
	}
	suite.mockRepo.On("ListKeywordRules", ctx).Return(rules, nil).Once()

	accountID, err := suite.service.Categorize(ctx, "kg1", "3월 통신요금", domain.DebitDirection)

	suite.Require().NoError(err)
	suite.Equal("ac8", accountID)
}

func (suite *CategorizerServiceTestSuite) TestCategorize_CaseSensitive() {
	ctx := context.Background()
	rules := []domain.KeywordRule{
		{RuleID: "r1", Keyword: "KEPCO", AccountID: "ac8", Priority: 1},
	}
	suite.mockRepo.On("ListKeywordRules", ctx).Return(rules, nil).Once()
	suite.mockRepo.On("FindDefaultMapping", ctx, "kg1").Return(nil, apperrors.ErrNotFound).Once()

	accountID, err := suite.service.Categorize(ctx, "kg1", "kepco 납부", domain.DebitDirection)

	suite.Require().NoError(err)
	suite.Equal(domain.UnassignedAccountID, accountID)
}

func (suite *CategorizerServiceTestSuite) TestCategorize_DefaultMappingPerDirection() {
	ctx := context.Background()
	mapping := &domain.DefaultAccountMapping{
		KindergartenID:  "kg1",
		CreditAccountID: "ac1",
		DebitAccountID:  "ac9",
	}
	suite.mockRepo.On("ListKeywordRules", ctx).Return([]domain.KeywordRule{}, nil).Twice()
	suite.mockRepo.On("FindDefaultMapping", ctx, "kg1").Return(mapping, nil).Twice()

	creditAccount, err := suite.service.Categorize(ctx, "kg1", "2월 원비 입금", domain.CreditDirection)
	suite.Require().NoError(err)
	suite.Equal("ac1", creditAccount)

	debitAccount, err := suite.service.Categorize(ctx, "kg1", "간식 구매", domain.DebitDirection)
	suite.Require().NoError(err)
	suite.Equal("ac9", debitAccount)
}

func (suite *CategorizerServiceTestSuite) TestCategorize_NoRuleNoMapping() {
	ctx := context.Background()
	suite.mockRepo.On("ListKeywordRules", ctx).Return([]domain.KeywordRule{}, nil).Once()
	suite.mockRepo.On("FindDefaultMapping", ctx, "kg1").Return(nil, apperrors.ErrNotFound).Once()

	accountID, err := suite.service.Categorize(ctx, "kg1", "알 수 없는 거래", domain.DebitDirection)

	suite.Require().NoError(err)
	suite.Equal(domain.UnassignedAccountID, accountID)
}

func (suite *CategorizerServiceTestSuite) TestCategorize_EmptyMappingSide() {
	ctx := context.Background()
	mapping := &domain.DefaultAccountMapping{
		KindergartenID:  "kg1",
		CreditAccountID: "ac1",
		DebitAccountID:  "",
	}
	suite.mockRepo.On("ListKeywordRules", ctx).Return([]domain.KeywordRule{}, nil).Once()
	suite.mockRepo.On("FindDefaultMapping", ctx, "kg1").Return(mapping, nil).Once()

	accountID, err := suite.service.Categorize(ctx, "kg1", "지출 건", domain.DebitDirection)

	suite.Require().NoError(err)
	suite.Equal(domain.UnassignedAccountID, accountID)
}

func TestCategorizerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategorizerServiceTestSuite))
}
