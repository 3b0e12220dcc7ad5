// Package types defines the Table interface, the record and column model,
// filter and sort state, observer payloads, collaborator interfaces and the
// standard errors for the datagrid engine.
package types
