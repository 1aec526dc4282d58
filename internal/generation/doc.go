// Package generation provides the ContentGenerator strategy used by every
// stage that can consult an external text or image collaborator.
//
// A Generator is chosen once at construction: CollaboratorBacked when a text
// collaborator is configured, Deterministic otherwise. Deterministic always
// fails with ErrNoCollaborator, so stage code treats "no collaborator" and
// "collaborator failed" identically and runs its rule-based fallback:
//
//	var out variantChoice
//	if err := gen.Text(ctx, req, &out); err != nil {
//		out = fallbackVariant(blueprint)
//	}
package generation
