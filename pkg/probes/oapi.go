// canary
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package probes

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// OpenapiFromData takes a probe's typed metric data and returns an
// openapi3.SchemaRef of a result wrapping that data. This is a workaround,
// since the openapi3gen.NewSchemaRefForValue function cannot describe the
// untyped data map of [Result] on its own.
func OpenapiFromData[T any](data T) (*openapi3.SchemaRef, error) {
	resultSchema, err := openapi3gen.NewSchemaRefForValue(Result{}, openapi3.Schemas{})
	if err != nil {
		return nil, err
	}
	dataSchema, err := openapi3gen.NewSchemaRefForValue(data, openapi3.Schemas{}, openapi3gen.UseAllExportedFields())
	if err != nil {
		return nil, err
	}

	resultSchema.Value.Properties["data"] = dataSchema
	return resultSchema, nil
}
