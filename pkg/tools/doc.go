// Package tools exposes document models as callable tools.
//
//   - [github.com/germanamz/docpipe/pkg/tools/toolbox]: tool definitions, the model tool set and a name-keyed collection
//   - [github.com/germanamz/docpipe/pkg/tools/mcpserver]: serves a tool set over the Model Context Protocol
package tools
