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

/*
Package invocation runs the request/response cycle of the shim

Every cycle receives one request, decodes it, hands it to the handler and answers with
"<status>:<payload>":

	0:<serialized result>       the handler returned
	1:Exception                 decoding failed, or the handler returned an error or panicked
	2:Error loading script      the handler never loaded (degraded mode)

Failure details never leave the process; they are logged only. The loop stops only when the
transport fails.
*/
package invocation
