package bot

const welcomeText = `Welcome to the support service!

I can connect you with a specialist, answer questions with an AI assistant, or show our FAQ.`

const menuText = `Main menu

1. Talk to a specialist
2. Chat with the AI assistant
3. FAQ

Send /menu at any time to come back here.`

const helpText = `Available commands:
/start - restart the conversation
/menu - back to the main menu
/clear - clear your conversation context
/help - show this message`

const chooseOptionText = "Please choose one of the menu options."

const clearedText = "Your conversation context has been cleared."

const namePromptText = "Let's get you in touch with a specialist. What is your name?"

const contactPromptText = "How can the specialist reach you? Leave an email or phone number."

const issuePromptText = "Briefly describe what you would like to talk about."

const confirmHintText = `Reply "yes" to submit the request or "no" to discard it.`

const ticketCreatedText = "Your request has been submitted. A specialist will contact you shortly."

const ticketDiscardedText = "Okay, the request was discarded."

const aiIntroText = `You are now chatting with the AI assistant. Ask anything.

Send /clear to reset the conversation or /menu to go back.`

const aiEmptyInputText = "Type a message and I will do my best to help."

const aiUnavailableText = "The assistant is unavailable, please try later."

const emptyFieldText = "This field cannot be empty, please try again."

// defaultSystemPrompt frames the assistant for supportive conversations.
const defaultSystemPrompt = `You are a supportive assistant for a help service.

Rules:
- acknowledge the user's feelings before anything else;
- answer calmly and kindly;
- do not diagnose and do not claim to be a doctor or therapist;
- avoid categorical advice, suggest gentle self-help steps instead;
- keep answers short and clear;
- in a crisis, gently recommend contacting a specialist or an emergency line.`
