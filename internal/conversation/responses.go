package conversation

import "fmt"

// Fixed response templates keyed by detected language. Marathi texts use
// Roman script, matching what the deployed prompt asks of the model.

func textReply(message string) QueryResponse {
	return QueryResponse{Response: Reply{Message: message}}
}

func defaultReply(lang string) QueryResponse {
	if lang == LanguageMarathi {
		return textReply("Mala samajat nahi ala. Punha sanga shakta ka?")
	}
	return textReply("I didn't understand that. Could you please rephrase?")
}

func locationErrorReply(lang string) QueryResponse {
	if lang == LanguageMarathi {
		return textReply("Latitude kinva longitude format chukicha ahe")
	}
	return textReply("Invalid latitude or longitude format")
}

func personNotFoundReply(lang string) QueryResponse {
	if lang == LanguageMarathi {
		return textReply("Mala tumhala task denyasaathi kontihi vyakti sapadla nahi. Krupaya tyache nav sanga.")
	}
	return textReply("I couldn't find the person you want to create a task for. Could you please mention their name first?")
}

func serviceUnavailableReply(lang string) QueryResponse {
	if lang == LanguageMarathi {
		return textReply("Maaf kara, sadhya seva upalabdh nahi. Krupaya thodya velane punha prayatna kara.")
	}
	return textReply("Sorry, I'm having trouble processing requests right now. Please try again in a moment.")
}

func unauthenticatedReply(lang string) QueryResponse {
	if lang == LanguageMarathi {
		return textReply("Tumche session sampla ahe. Krupaya punha login kara.")
	}
	return textReply("Your session has expired. Please sign in again to continue.")
}

func appointmentFailedReply(lang string) QueryResponse {
	if lang == LanguageMarathi {
		return textReply("Maaf kara, appointment book karta ali nahi. Punha prayatna karaycha ka?")
	}
	return textReply("I'm sorry, I couldn't schedule the appointment. Would you like to try again?")
}

func taskFailedReply(lang string) QueryResponse {
	if lang == LanguageMarathi {
		return textReply("Maaf kara, task tayar karta ala nahi. Punha prayatna karaycha ka?")
	}
	return textReply("I'm sorry, I couldn't create the task. Would you like to try again?")
}

func taskCreatedReply(lang, firstName, lastName, priority string) QueryResponse {
	if lang == LanguageMarathi {
		return textReply(fmt.Sprintf(
			"Me %s %s yancha road maintenance babtit %s priority task banavla ahe. Task aaj suru hoil ani 7 divsat sampel.",
			firstName, lastName, priority))
	}
	return textReply(fmt.Sprintf(
		"I've created a %s priority task for %s %s regarding road maintenance. The task will start today and is due in 7 days.",
		priority, firstName, lastName))
}
