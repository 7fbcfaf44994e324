/*

Process of lifting

Instruction Bytes ->
	decode ->
Decoded Instruction (decode.Inst) ->
	lift ->
Intermediate Language (il) ->
	format ->
Text

Instruction Bytes ->
	decode ->
Decoded Instruction (decode.Inst) ->
	info ->
Branch Edges (lift.Info)

Code Bytes + Entry ->
	scan ->
Function (scan.Function) ->
	resolve flags ->
Flag Values (lift.FlagValue)

*/
package lifter
