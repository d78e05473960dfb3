package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, keyWelcome, "Hi %s, welcome! Before you start contributing, please read and agree to the contributor license agreement.")
	message.SetString(lang, keyAgreeLicenseLabel, "I agree")
	message.SetString(lang, keyAskAccountLogin, "Thanks %s! Reply with your GitHub login so we can link your account.")
	message.SetString(lang, keyAccountMissing, "We could not find a GitHub account named %s. Check the spelling and try again.")
	message.SetString(lang, keyAccountTaken, "The GitHub account %s is already linked to another contributor.")
	message.SetString(lang, keyLinkNotApplicable, "Linking an account is not the next step right now.")
	message.SetString(lang, keyTaskAssigned, "Linked %s. Your first task (#%d) is ready. Press the button when your pull request is merged.")
	message.SetString(lang, keyMarkCompleteLabel, "Mark complete")
	message.SetString(lang, keyTaskCompleted, "Congratulations %s, task #%d is complete!")
	message.SetString(lang, keyActionNotApplicable, "%q is not the right action right now.")
	message.SetString(lang, keyUnhandledAction, "Sorry, the action %q is not handled.")
	message.SetString(lang, keyMentorPullRequest, "%s: your trainee %s opened a pull request: %s")
}
