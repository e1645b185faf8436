// Package integration defines the contract every third-party integration
// implements: a connection state machine bound to one resolved
// configuration, and a single ExecuteSkill entry point that turns
// heterogeneous upstream outcomes into one result shape.
//
// Concrete integrations live in integration/builtin. The dispatch package
// owns instance lifecycles; nothing else mutates an instance's state.
package integration
