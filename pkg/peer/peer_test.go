//go:build test_unit && linux

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

package peer

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nuclio/nuclio-shim/pkg/channel"
	"github.com/nuclio/nuclio-shim/pkg/codec"
	"github.com/nuclio/nuclio-shim/pkg/errgroup"
	"github.com/nuclio/nuclio-shim/pkg/framer"
	"github.com/nuclio/nuclio-shim/pkg/handler"
	"github.com/nuclio/nuclio-shim/pkg/invocation"

	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
)

type peerTestSuite struct {
	suite.Suite
	logger    logger.Logger
	jsonCodec codec.Codec
}

func (suite *peerTestSuite) SetupSuite() {
	var err error

	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)

	suite.jsonCodec, err = codec.Get("json")
	suite.Require().NoError(err)
}

func (suite *peerTestSuite) TestParseResponse() {
	for _, testCase := range []struct {
		name            string
		message         string
		expectedStatus  invocation.Status
		expectedPayload string
		expectedErr     error
		expectError     bool
	}{
		{name: "success", message: `0:{"x":1}`, expectedStatus: invocation.StatusSuccess, expectedPayload: `{"x":1}`},
		{name: "payload with colons", message: `0:"a:b"`, expectedStatus: invocation.StatusSuccess, expectedPayload: `"a:b"`},
		{name: "exception", message: "1:Exception", expectedStatus: invocation.StatusException, expectedPayload: "Exception", expectedErr: ErrException},
		{name: "load failure", message: "2:Error loading script", expectedStatus: invocation.StatusLoadFailure, expectedPayload: "Error loading script", expectedErr: ErrLoadFailure},
		{name: "no separator", message: "Exception", expectError: true},
		{name: "unknown status", message: "3:what", expectError: true},
		{name: "empty", message: "", expectError: true},
	} {
		suite.Run(testCase.name, func() {
			response, err := ParseResponse(testCase.message)
			if testCase.expectError {
				suite.Require().Error(err)
				return
			}

			suite.Require().NoError(err)
			suite.Require().Equal(testCase.expectedStatus, response.Status)
			suite.Require().Equal(testCase.expectedPayload, response.Payload)
			suite.Require().Equal(testCase.expectedErr, response.Err())
		})
	}
}

func (suite *peerTestSuite) TestParseResponseWithSentinel() {
	payload := strings.Repeat("r", framer.ChunkSize-2)

	response, err := ParseResponse("0:" + payload + "\x00")
	suite.Require().NoError(err)
	suite.Require().Equal(payload, response.Payload)
}

func (suite *peerTestSuite) TestInvokeEcho() {
	suite.withShim("builtin:echo", func(peerInstance *Peer) {
		response, err := peerInstance.Invoke(map[string]interface{}{"x": 1})
		suite.Require().NoError(err)
		suite.Require().Equal(invocation.StatusSuccess, response.Status)
		suite.Require().Equal(`{"x":1}`, response.Payload)

		result, err := peerInstance.DecodeResult(response)
		suite.Require().NoError(err)
		suite.Require().Equal(map[string]interface{}{"x": json.Number("1")}, result)

		// malformed requests are answered, and the shim keeps serving
		response, err = peerInstance.InvokeRaw("{not json")
		suite.Require().NoError(err)
		suite.Require().Equal("1:Exception", string(response.Status)+":"+response.Payload)

		_, err = peerInstance.DecodeResult(response)
		suite.Require().Equal(ErrException, err)

		response, err = peerInstance.InvokeRaw("{}")
		suite.Require().NoError(err)
		suite.Require().Equal("{}", response.Payload)
	})
}

func (suite *peerTestSuite) TestInvokeChunkBoundaries() {
	suite.withShim("builtin:echo", func(peerInstance *Peer) {

		// request and response lengths around the chunk size, including exact multiples
		for _, size := range []int{
			framer.ChunkSize - 4,
			framer.ChunkSize - 3,
			framer.ChunkSize - 2,
			framer.ChunkSize - 1,
			2*framer.ChunkSize - 4,
			2*framer.ChunkSize - 2,
			5000,
		} {
			value := strings.Repeat("v", size)

			response, err := peerInstance.Invoke(value)
			suite.Require().NoError(err, "size %d", size)
			suite.Require().Equal(invocation.StatusSuccess, response.Status)
			suite.Require().Equal(`"`+value+`"`, response.Payload, "size %d", size)
		}
	})
}

func (suite *peerTestSuite) TestInvokeFailingHandlers() {
	suite.withShim("builtin:fail", func(peerInstance *Peer) {
		response, err := peerInstance.Invoke(map[string]interface{}{})
		suite.Require().NoError(err)
		suite.Require().Equal(invocation.StatusException, response.Status)
		suite.Require().Equal("Exception", response.Payload)
	})

	suite.withShim("builtin:panic", func(peerInstance *Peer) {
		response, err := peerInstance.Invoke(map[string]interface{}{})
		suite.Require().NoError(err)
		suite.Require().Equal(invocation.StatusException, response.Status)
	})
}

func (suite *peerTestSuite) TestInvokeDegraded() {
	suite.withShim("/does/not/exist.so", func(peerInstance *Peer) {
		for _, request := range []string{"{}", "garbage", `[1, 2]`} {
			response, err := peerInstance.InvokeRaw(request)
			suite.Require().NoError(err)
			suite.Require().Equal(invocation.StatusLoadFailure, response.Status)
			suite.Require().Equal("Error loading script", response.Payload)
			suite.Require().Equal(ErrLoadFailure, response.Err())
		}
	})
}

// withShim runs an invocation loop on one end of a channel pair and a peer on the other.
// Closing the peer end must stop the loop with a transport failure
func (suite *peerTestSuite) withShim(handlerSpec string, callback func(*Peer)) {
	local, remoteFile, err := channel.NewPair()
	suite.Require().NoError(err)

	shimEnd := channel.NewChannel(remoteFile)
	defer shimEnd.Close() // nolint: errcheck

	loop, err := invocation.NewLoop(suite.logger, &invocation.Configuration{
		Transport:  framer.NewFramer(suite.logger, shimEnd),
		Codec:      suite.jsonCodec,
		LoadResult: handler.Load(suite.logger, handlerSpec),
	})
	suite.Require().NoError(err)

	errGroup, _ := errgroup.WithContext(context.Background(), suite.logger)
	errGroup.Go("loop", loop.Run)

	callback(NewPeer(suite.logger, framer.NewFramer(suite.logger, local), suite.jsonCodec))

	suite.Require().NoError(local.Close())

	err = errGroup.Wait()
	suite.Require().Error(err)
	suite.Require().True(framer.IsTransportError(err))
}

func TestPeerTestSuite(t *testing.T) {
	suite.Run(t, new(peerTestSuite))
}
