package classify

import "fmt"

const filterPrompt = `Assess if the following is a movie review or not and return exactly one word:
'yes' if it is a review for movies or any kind of tv show review or film review or cinema review,
'no' if it is not
%s`

const sentimentPrompt = `Analyze the following movie review and determine if the sentiment is: positive or negative.
Return answer in single word as either positive or negative: %s`

func filterPromptFor(text string) string {
	return fmt.Sprintf(filterPrompt, text)
}

func sentimentPromptFor(text string) string {
	return fmt.Sprintf(sentimentPrompt, text)
}
