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
Package framer packs payloads into fixed size chunks over a boundary preserving channel

A message is a sequence of ChunkSize byte chunks terminated by the first chunk shorter than
ChunkSize. There is no length header. A payload whose length is an exact multiple of
ChunkSize (or is empty) is followed by a single NUL byte so that it always ends with a
short chunk. The NUL is not stripped on receive; decoders must ignore trailing bytes.
*/
package framer
