package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidParameter, "invalid parameter: %s", "test")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter: test", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeDataNotFound, err.Code)
	suite.Equal("data not found", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeMarketDataFetchFailed, cause, "failed to fetch daily prices for %s", "AAPL")
	suite.NotNil(err)
	suite.Equal(ErrCodeMarketDataFetchFailed, err.Code)
	suite.Equal("failed to fetch daily prices for AAPL", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal("[200] data not found: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestUnwrapNil() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeInvalidPeriod, "window must be positive")
	suite.Equal(ErrCodeInvalidPeriod, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeMissingReferenceRow, "no previous-day row")
	err := Wrap(ErrCodeFeatureCalculation, "pivot range failed", cause)
	// GetCode should return the outermost error's code
	suite.Equal(ErrCodeFeatureCalculation, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromNonArgoError() {
	err := errors.New("standard error")
	suite.Equal(ErrCodeUnknown, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.True(HasCode(err, ErrCodeInvalidParameter))
	suite.False(HasCode(err, ErrCodeDataNotFound))
}

func (suite *ErrorTestSuite) TestHasCodeSearchesChain() {
	cause := New(ErrCodeZeroCandleRange, "candle size is zero")
	err := Wrap(ErrCodeFeatureCalculation, "bar composition failed", cause)
	suite.True(HasCode(err, ErrCodeZeroCandleRange))
	suite.True(HasCode(err, ErrCodeFeatureCalculation))
	suite.False(HasCode(err, ErrCodeDataNotFound))
	suite.False(HasCode(nil, ErrCodeUnknown))
}

func (suite *ErrorTestSuite) TestIsError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeInvalidParameter, argoErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(300), ErrCodeFeatureNotFound)
	suite.Equal(ErrorCode(400), ErrCodeFileReadFailed)
	suite.Equal(ErrorCode(500), ErrCodeUnsupportedPivotType)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
}

func (suite *ErrorTestSuite) TestIsInvalidInput() {
	suite.True(IsInvalidInput(New(ErrCodeMissingReferenceRow, "missing")))
	suite.True(IsInvalidInput(New(ErrCodeAmbiguousReferenceRow, "ambiguous")))
	suite.True(IsInvalidInput(Wrap(ErrCodeFeatureCalculation, "failed", New(ErrCodeZeroCandleRange, "zero"))))
	suite.True(IsInvalidInput(fmt.Errorf("outer: %w", New(ErrCodeZeroMovingAverage, "zero ma"))))

	suite.False(IsInvalidInput(New(ErrCodeUnsupportedPivotType, "fibonacci")))
	suite.False(IsInvalidInput(errors.New("standard error")))
	suite.False(IsInvalidInput(nil))
}

func (suite *ErrorTestSuite) TestIsUnsupported() {
	suite.True(IsUnsupported(New(ErrCodeUnsupportedPivotType, "fibonacci")))
	suite.True(IsUnsupported(Wrap(ErrCodeInvalidConfiguration, "bad config", New(ErrCodeUnsupportedFormat, "xlsx"))))

	suite.False(IsUnsupported(New(ErrCodeMissingReferenceRow, "missing")))
	suite.False(IsUnsupported(errors.New("standard error")))
}
