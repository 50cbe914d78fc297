package notify

import (
	"fmt"
	"strings"

	"opengalaxy/model"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

func displayName(u *model.User) string {
	if u == nil {
		return "there"
	}
	if n := strings.TrimSpace(u.FullName); n != "" {
		return n
	}
	if n := strings.TrimSpace(u.Username); n != "" {
		return n
	}
	return "there"
}

func loginMessage(u *model.User) Message {
	return Message{
		To:      u.Email,
		Subject: "Welcome back to OpenGalaxy",
		Body: fmt.Sprintf("Hey %s,\n\n"+
			"You have signed in to OpenGalaxy with GitHub.\n"+
			"Pick a problem, fork it, fix it and flex it.\n\n"+
			"The OpenGalaxy Team", displayName(u)),
	}
}

func problemPostedMessage(poster *model.User, title string) Message {
	return Message{
		To:      poster.Email,
		Subject: "Your problem is live on OpenGalaxy",
		Body: fmt.Sprintf("Hi %s,\n\n"+
			"Your problem %q has been posted to OpenGalaxy.\n"+
			"We will let you know as soon as someone submits a solution.\n\n"+
			"The OpenGalaxy Team", displayName(poster), title),
	}
}

func solutionSubmittedMessage(owner, submitter *model.User, title string) Message {
	return Message{
		To:      owner.Email,
		Subject: "New solution submitted to your problem",
		Body: fmt.Sprintf("Hi %s,\n\n"+
			"%s just submitted a solution for your problem %q.\n"+
			"Take a look and accept it if it cracks the issue.\n\n"+
			"The OpenGalaxy Team", displayName(owner), displayName(submitter), title),
	}
}

func solutionAcceptedMessage(submitter *model.User, title string) Message {
	return Message{
		To:      submitter.Email,
		Subject: "Your solution was accepted",
		Body: fmt.Sprintf("Hi %s,\n\n"+
			"Your solution for %q was accepted and you earned a point.\n"+
			"Check your profile for any new badges.\n\n"+
			"The OpenGalaxy Team", displayName(submitter), title),
	}
}
