// Package model defines the provider-agnostic contract between the reasoning
// loop and a language model.
//
// The contract is deliberately narrow: an ordered list of role-tagged
// messages goes in, completion text comes out. Tool calls travel in-band as
// text (see package parser), so providers need no function-calling support.
//
// Providers live in sub-packages (model/openai, model/anthropic) so higher
// layers stay decoupled from vendor SDKs. MockInvoker covers tests & examples.
package model
