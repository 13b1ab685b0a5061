// Package oplatypes defines core interfaces and data structures used throughout Opla.
//
// The package holds the contracts that the prompt pipeline, the services and the
// CLI share, so that none of them has to import another's implementation.
//
// # Package Organization
//
// ## Prompt Types (prompt_types.go)
//
// Types produced by the prompt tokenizer:
//
//   - PromptTokenType, PromptTokenState: token classification and validation state
//   - PromptToken: a single lexical unit of the chat input
//   - ParsedPrompt: the result of scanning one input string
//   - PromptRequest: a validated prompt compiled into a completion request
//
// ## Command Types (command_types.go)
//
// Types describing the commands a prompt can reference:
//
//   - CommandType, CommandGroup: what a command is and how it is validated
//   - Command: a mention, hashtag or action known to the registry
//   - CommandRegistry: the lookup the validator consults
//
// ## Catalog Types (catalog_types.go)
//
// Types decoded from the embedded YAML catalogs:
//
//   - ModelCatalogEntry: a selectable model (mention target)
//   - ParameterDefinition, ParameterConstraints: a completion parameter (hashtag target)
//   - ActionDefinition: a slash action
//
// ## Theme Types (theme_types.go)
//
//   - ThemeConfig, StyleConfig, AdaptiveColor: token themes as decoded from YAML
//
// ## Core Interfaces (core_interfaces.go)
//
//   - Service: services registered at startup
package oplatypes
