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

package errgroup

import (
	"context"
	"testing"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type ErrGroupTestSuite struct {
	suite.Suite
	logger logger.Logger
	ctx    context.Context
}

func (suite *ErrGroupTestSuite) SetupTest() {
	suite.logger, _ = nucliozap.NewNuclioZapTest("test")
	suite.ctx = context.Background()
}

func (suite *ErrGroupTestSuite) TestAllSucceed() {
	errGroup, _ := WithContext(suite.ctx, suite.logger)

	results := make([]int, 3)
	for index := range results {
		index := index
		errGroup.Go("set", func() error {
			results[index] = index + 1
			return nil
		})
	}

	suite.Require().NoError(errGroup.Wait())
	suite.Require().Equal([]int{1, 2, 3}, results)
}

func (suite *ErrGroupTestSuite) TestFirstErrorCancelsContext() {
	errGroup, errGroupCtx := WithContext(suite.ctx, suite.logger)

	errGroup.Go("fail", func() error {
		return errors.New("failed")
	})

	errGroup.Go("wait", func() error {
		<-errGroupCtx.Done()
		return nil
	})

	suite.Require().Error(errGroup.Wait())
}

func (suite *ErrGroupTestSuite) TestPanicBecomesError() {
	errGroup, _ := WithContext(suite.ctx, suite.logger)

	errGroup.Go("panic", func() error {
		panic("boom")
	})

	err := errGroup.Wait()
	suite.Require().Error(err)
	suite.Require().Contains(err.Error(), "boom")
}

func TestErrGroupTestSuite(t *testing.T) {
	suite.Run(t, new(ErrGroupTestSuite))
}
