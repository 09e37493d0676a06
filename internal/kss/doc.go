// Package kss parses KSS documentation comments out of stylesheets.
//
// A comment block documents a section when its last line is a reference:
//
//	// Buttons
//	//
//	// Use buttons for primary actions.
//	//
//	// .primary - The main call to action
//	// :hover   - Highlight on hover
//	//
//	// Markup: <button class="{$modifiers}">Go</button>
//	//
//	// Styleguide 2.1
//
// The first paragraph is the header, a paragraph of "<name> - <description>"
// entries lists modifiers, a paragraph starting with "Markup:" holds example
// markup and everything else forms the description.
package kss
