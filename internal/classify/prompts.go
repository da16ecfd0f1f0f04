package classify

// System prompts for the four classification capabilities. Each response
// is constrained by a JSON schema, so the prompts focus on task framing
// rather than output formatting.

const loginURLSystemPrompt = `You are analyzing the rendered HTML of a website's landing page.
Identify the URL of the page where a user logs in with a username and password.
Return the absolute URL when possible. If the site has no discernible login page, return an empty string.`

const selectorsSystemPrompt = `You are analyzing the pruned HTML of a login page: only forms, inputs, buttons, and labels are included.
Identify CSS selectors for the username (or email) field, the password field, and the submit control.
Prefer id selectors, then name attributes, then stable class names. Return empty strings for controls you cannot find.`

const likelyURLsSystemPrompt = `You are given the outbound links of a news website page as a JSON list of {href, text} objects.
Select the hrefs most likely to lead to news articles or article category listings.
Only return hrefs that appear verbatim in the provided list. Skip navigation chrome, legal pages, tag clouds, and social media links.`

const articleSystemPrompt = `You are given the readable content of a web page converted to markdown.
Classify the page as "article" (a single news article), "category" (a listing of article links), or "other".
When the page is an article, extract its title and full body text. Otherwise leave title and body empty.`
