/*

Process of compilation

Program Text ->
	front.Translate (one pass, one Backend) ->
Host Source (<name>.c, <name>.go, <name>.rs) ->
	Backend.Compile (cc, go build, rustc) ->
Host Executable (<name>.<ext>.exe) ->
	Backend.Run ->
Relayed Output

Each requested target gets its own Backend,
and each source file goes through the whole chain once per target.

*/
package compiler
