package httptraits

import (
	"io/ioutil"
	"net/http"

	"github.com/traits-unit/traits-unit/framework/trap"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// MaybeText is a piece of text that may be absent. Absent and empty are different things.
type MaybeText struct {
	text ldvalue.OptionalString
}

func SomeText(text string) MaybeText {
	return MaybeText{text: ldvalue.NewOptionalString(text)}
}

func NoText() MaybeText {
	return MaybeText{}
}

func (m MaybeText) IsPresent() bool {
	return m.text.IsDefined()
}

// Unwrap returns the text, or aborts if it is absent.
func (m MaybeText) Unwrap() string {
	if !m.text.IsDefined() {
		trap.Terminate("Unable to unwrap value.")
	}
	return m.text.StringValue()
}

// BodyText reads and closes the response body. A response without a body, or with an empty
// one, has no text.
func BodyText(response *http.Response) (MaybeText, error) {
	if response.Body == nil || response.Body == http.NoBody {
		return NoText(), nil
	}
	defer response.Body.Close()
	data, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return NoText(), err
	}
	if len(data) == 0 {
		return NoText(), nil
	}
	return SomeText(string(data)), nil
}
