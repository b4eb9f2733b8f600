package resolver

import "github.com/deepnoodle-ai/zigzag/scope"

// Align assigns byte offsets to members, parameters and locals. Members
// follow the inherited members of the supertypes. Parameters are pushed as
// dwords and start after the object pointer in member functions. Locals
// ascend from zero below the frame pointer.
func Align(root *scope.Context) {
	root.Walk(func(ctx *scope.Context) {
		if typ := ctx.Type(); typ != nil && typ.Primitive() == nil {
			offset := 0
			for _, super := range typ.Supertypes {
				offset += super.ContentSize()
			}
			for _, m := range typ.Members() {
				m.Alignment = offset
				offset += m.Size()
			}
		}
		if f := ctx.Function(); f != nil {
			offset := 0
			if f.IsMember() {
				offset = scope.ReferenceSize
			}
			for _, p := range f.Parameters {
				p.Alignment = offset
				offset += scope.ReferenceSize
			}
			offset = 0
			for _, v := range f.Locals() {
				v.Alignment = offset
				offset += v.Size()
			}
		}
	})
}
