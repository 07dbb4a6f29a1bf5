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

package registry

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type registryTestSuite struct {
	suite.Suite
	registry *Registry
}

func (suite *registryTestSuite) SetupTest() {
	suite.registry = NewRegistry("test")
}

func (suite *registryTestSuite) TestRegisterAndGet() {
	suite.registry.Register("b", 2)
	suite.registry.Register("a", 1)

	registeree, err := suite.registry.Get("a")
	suite.Require().NoError(err)
	suite.Require().Equal(1, registeree)

	suite.Require().Equal([]string{"a", "b"}, suite.registry.GetKinds())
}

func (suite *registryTestSuite) TestGetMissing() {
	_, err := suite.registry.Get("missing")
	suite.Require().Error(err)
}

func (suite *registryTestSuite) TestRegisterTwicePanics() {
	suite.registry.Register("a", 1)

	suite.Require().Panics(func() {
		suite.registry.Register("a", 2)
	})
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(registryTestSuite))
}
