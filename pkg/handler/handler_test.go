//go:build test_unit

/*
Copyright 2024 The Nuclio Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package handler

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type structHandler struct {
	calls int
}

func (sh *structHandler) Handle(request interface{}) (interface{}, error) {
	sh.calls++
	return sh.calls, nil
}

type handlerTestSuite struct {
	suite.Suite
	logger logger.Logger
}

func (suite *handlerTestSuite) SetupSuite() {
	var err error

	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)
}

func (suite *handlerTestSuite) TestParseSpec() {
	for _, testCase := range []struct {
		spec           string
		expectedModule string
		expectedSymbol string
		expectError    bool
	}{
		{spec: "builtin:echo", expectedModule: "builtin", expectedSymbol: "echo"},
		{spec: "/opt/function/handler.so", expectedModule: "/opt/function/handler.so", expectedSymbol: "Main"},
		{spec: "/opt/function/handler.so:Handle", expectedModule: "/opt/function/handler.so", expectedSymbol: "Handle"},
		{spec: "/opt/function/handler.so:", expectedModule: "/opt/function/handler.so", expectedSymbol: "Main"},
		{spec: "", expectError: true},
		{spec: ":Main", expectError: true},
		{spec: "module:wat:handler", expectError: true},
	} {
		suite.Run(testCase.spec, func() {
			module, symbol, err := ParseSpec(testCase.spec)
			if testCase.expectError {
				suite.Require().Error(err)
				return
			}

			suite.Require().NoError(err)
			suite.Require().Equal(testCase.expectedModule, module)
			suite.Require().Equal(testCase.expectedSymbol, symbol)
		})
	}
}

func (suite *handlerTestSuite) TestLoadBuiltins() {
	result := Load(suite.logger, "builtin:echo")
	suite.Require().False(result.Failed())
	suite.Require().NoError(result.GetError())

	response, err := result.GetHandler().Handle(map[string]interface{}{"a": "b"})
	suite.Require().NoError(err)
	suite.Require().Equal(map[string]interface{}{"a": "b"}, response)

	result = Load(suite.logger, "builtin:fail")
	suite.Require().False(result.Failed())

	_, err = result.GetHandler().Handle(nil)
	suite.Require().Error(err)

	result = Load(suite.logger, "builtin:panic")
	suite.Require().False(result.Failed())
	suite.Require().Panics(func() {
		result.GetHandler().Handle(nil) // nolint: errcheck
	})
}

func (suite *handlerTestSuite) TestLoadFailures() {
	for _, spec := range []string{
		"",
		"builtin:missing",
		filepath.Join(suite.T().TempDir(), "missing.so"),
		"a:b:c",
	} {
		result := Load(suite.logger, spec)
		suite.Require().True(result.Failed(), "spec %q", spec)
		suite.Require().Nil(result.GetHandler())
		suite.Require().Error(result.GetError())
	}
}

func (suite *handlerTestSuite) TestLoadFailedWithoutCause() {
	result := LoadFailed(nil)
	suite.Require().True(result.Failed())
	suite.Require().Error(result.GetError())
}

func (suite *handlerTestSuite) TestAdaptGenericFunction() {
	adapted, err := adaptSymbol(func(request interface{}) (interface{}, error) {
		return []interface{}{request}, nil
	})
	suite.Require().NoError(err)

	response, err := adapted.Handle("x")
	suite.Require().NoError(err)
	suite.Require().Equal([]interface{}{"x"}, response)
}

func (suite *handlerTestSuite) TestAdaptMapFunction() {
	adapted, err := adaptSymbol(func(request map[string]interface{}) (interface{}, error) {
		return request["key"], nil
	})
	suite.Require().NoError(err)

	response, err := adapted.Handle(map[string]interface{}{"key": "value"})
	suite.Require().NoError(err)
	suite.Require().Equal("value", response)

	// a non object document can't be passed to it
	_, err = adapted.Handle([]interface{}{"key"})
	suite.Require().Error(err)
}

func (suite *handlerTestSuite) TestAdaptStringArgumentsFunction() {
	adapted, err := adaptSymbol(func(args map[string]string) interface{} {
		return args["name"] + "/" + args["count"]
	})
	suite.Require().NoError(err)

	response, err := adapted.Handle(map[string]interface{}{
		"name":  "shim",
		"count": json.Number("3"),
	})
	suite.Require().NoError(err)
	suite.Require().Equal("shim/3", response)
}

func (suite *handlerTestSuite) TestAdaptHandlerValue() {
	instance := &structHandler{}

	adapted, err := adaptSymbol(instance)
	suite.Require().NoError(err)

	response, err := adapted.Handle(nil)
	suite.Require().NoError(err)
	suite.Require().Equal(1, response)
}

func (suite *handlerTestSuite) TestAdaptHandlerVariable() {
	var exported Handler = &structHandler{}

	adapted, err := adaptSymbol(&exported)
	suite.Require().NoError(err)

	response, err := adapted.Handle(nil)
	suite.Require().NoError(err)
	suite.Require().Equal(1, response)

	var unset Handler

	_, err = adaptSymbol(&unset)
	suite.Require().Error(err)
}

func (suite *handlerTestSuite) TestAdaptUnsupported() {
	for _, symbol := range []interface{}{
		42,
		func() {},
		func(string) string { return "" },
	} {
		_, err := adaptSymbol(symbol)
		suite.Require().Error(err, "symbol %T", symbol)
	}
}

func (suite *handlerTestSuite) TestTyped() {
	type request struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	type response struct {
		Greeting string `json:"greeting"`
	}

	typedHandler := Typed(func(typedRequest request) (response, error) {
		if typedRequest.Count < 0 {
			return response{}, errors.New("Negative count")
		}

		return response{Greeting: typedRequest.Name + " x" + strconv.Itoa(typedRequest.Count)}, nil
	})

	result, err := typedHandler.Handle(map[string]interface{}{"name": "hi", "count": json.Number("2")})
	suite.Require().NoError(err)
	suite.Require().Equal(response{Greeting: "hi x2"}, result)

	// weakly typed input is converted
	result, err = typedHandler.Handle(map[string]interface{}{"name": "hi", "count": "3"})
	suite.Require().NoError(err)
	suite.Require().Equal(response{Greeting: "hi x3"}, result)

	// errors from the function itself are returned
	_, err = typedHandler.Handle(map[string]interface{}{"count": -1})
	suite.Require().Error(err)

	// documents that can't be converted fail before the function is called
	_, err = typedHandler.Handle("not an object")
	suite.Require().Error(err)
}

func (suite *handlerTestSuite) TestMockHandler() {
	mockHandler := NewMockHandler()
	mockHandler.On("Handle", "in").Return("out", nil).Once()

	response, err := mockHandler.Handle("in")
	suite.Require().NoError(err)
	suite.Require().Equal("out", response)

	mockHandler.AssertExpectations(suite.T())
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(handlerTestSuite))
}
