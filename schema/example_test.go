// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import "fmt"

func ExampleObject_Parse() {
	user := NewObject(
		Prop("id", String().UUID(4)),
		Prop("name", String().Min(1).Max(50)),
		Prop("email", String().Email()),
	)

	out, iss := user.Parse(map[string]any{
		"id":    "3FA85F64-5717-4562-B3FC-2C963F66AFA6",
		"name":  "John",
		"email": "john@x.com",
	})
	if len(iss) > 0 {
		fmt.Println(iss)
		return
	}

	fmt.Println(out["id"])
	// Output: 3fa85f64-5717-4562-b3fc-2c963f66afa6
}

func ExampleObject_Parse_issues() {
	user := NewObject(
		Prop("id", String().UUID(4)),
		Prop("name", String().Min(1).Max(50)),
	)

	_, iss := user.Parse(map[string]any{
		"id": "not-a-uuid",
	})
	for _, it := range iss {
		fmt.Println(it.Path, it.Code)
	}
	// Output: id invalid_format
	// name required
}

func ExampleObject_Pick() {
	user := NewObject(
		Prop("id", String().UUID(4)),
		Prop("name", String().Min(1).Max(50)),
		Prop("email", String().Email()),
	)

	fmt.Println(user.Pick("name", "email").Keys())
	// Output: [name email]
}

func ExampleObject_Omit() {
	user := NewObject(
		Prop("id", String().UUID(4)),
		Prop("name", String().Min(1).Max(50)),
		Prop("email", String().Email()),
	)

	fmt.Println(user.Omit("id").Keys())
	// Output: [name email]
}

func ExampleObject_Partial() {
	user := NewObject(
		Prop("name", String().Min(1).Max(50)),
		Prop("email", String().Email()),
	)

	out, iss := user.Partial().Parse(map[string]any{
		"email": "john@x.com",
	})
	fmt.Println(out, len(iss))
	// Output: map[email:john@x.com] 0
}

func ExampleObject_Extend() {
	user := NewObject(
		Prop("name", String().Min(1).Max(50)),
	)

	admin := user.Extend(Prop("role", String().Literal("admin")))

	fmt.Println(user.Keys(), admin.Keys())
	// Output: [name] [name role]
}

func ExampleStringBool() {
	subscribed := StringBool()

	on, _ := subscribed.ParseValue("on")
	off, _ := subscribed.ParseValue("No")
	_, iss := subscribed.ParseValue("maybe")

	fmt.Println(on, off, iss[0].Code)
	// Output: true false invalid_value
}

func ExampleDate() {
	_, iss := Date().ParseValue(InvalidDate{Raw: "yesterday"})
	fmt.Println(iss[0].Code, iss[0].Message)
	// Output: invalid_date invalid date
}
