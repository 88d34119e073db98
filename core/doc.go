// Package core provides the coverkit domain types and the contract that image
// providers implement.
//
// coverkit turns a short form (main title, subtitle, platform, reference
// images, style tags, free-text instructions) into a single generation call
// against a multimodal image model, then lets the user refine the result with
// follow-up edit instructions.
//
// # Platforms
//
// A [Platform] is one of four fixed publishing targets. Each carries the
// aspect ratio sent to the image API verbatim:
//
//	p, _ := core.LookupPlatform(core.PlatformDouyin)
//	fmt.Println(p.Ratio) // 9:16
//
// # Cover Requests
//
// [CoverRequest] is the mutable form state. [NewCoverRequest] applies the
// session defaults and [CoverRequest.Validate] reports [ErrMissingTitle]
// before any network call is attempted. Style tags live in a [TagSet], which
// only tracks membership.
//
// # Prompt Composition
//
// [ComposeCoverPrompt] is a pure function from a request to ordered [Part]
// values: the subject image, the style image and then exactly one text
// instruction. [ComposeEditPrompt] builds the two-part follow-up request.
//
// # Providers
//
// Providers implement [ImageGenerator]:
//
//	type ImageGenerator interface {
//	    ID() string
//	    GenerateContent(ctx context.Context, req *ContentRequest) (*ContentResponse, error)
//	}
//
// [ContentResponse.FirstImage] applies the first-match-wins policy when a
// response holds several image parts.
//
// # Artifacts
//
// An [Artifact] is the generated image as base64 text. [Artifact.DataURI]
// renders the displayable form and [StripDataURIPrefix] recovers the raw
// payload for resubmission.
//
// # Error Handling
//
// Provider failures are classified with sentinels:
//   - [ErrUnauthorized]: the API rejected the key
//   - [ErrRateLimited]: provider rate limit exceeded
//   - [ErrBadRequest]: invalid request parameters
//   - [ErrServer]: provider server error (5xx)
//   - [ErrNetwork]: network connectivity issues
//   - [ErrDecode]: response parsing failed
//
// Orchestration wraps them in [GenerationError], which matches
// [ErrGenerationFailed]. A call that succeeds without an image part reports
// [ErrNoImageProduced]. Use [IsInvalidCredential] to decide whether the
// stored key must be purged:
//
//	if core.IsInvalidCredential(err) {
//	    gate.Invalidate(err)
//	}
//
// # Secrets
//
// API keys travel as [Secret], which redacts itself in fmt, JSON and text
// output. [ValidateCredentialFormat] performs the local prefix check.
package core
