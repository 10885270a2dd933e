// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

// Package example provides few-shot example providers and formatting.
//
// Few-shot examples show the model input-output patterns for the task at
// hand. An agent configured with a [types.ExampleProvider] gets the provider's
// examples appended to its system instruction, formatted as:
//
//	<EXAMPLES>
//	Begin few-shot
//	The following are examples of user queries and model responses using the available tools.
//
//	EXAMPLE 1:
//	Begin example
//	[user]
//	What is the weather in Tokyo?
//
//	[model]
//	```tool_code
//	weather_tool(city='Tokyo')
//	```
//	```tool_outputs
//	{"temperature": "22C", "condition": "sunny"}
//	```
//	The weather in Tokyo is currently 22C and sunny.
//	End example
//
//	End few-shot
//	<EXAMPLES>
//
// [StaticProvider] serves a fixed example list. Implement
// [types.ExampleProvider] for dynamic selection, such as retrieving examples
// by semantic similarity.
package example
