package config

const DefaultPrimarySystem = "You are an expert data parser."

const DefaultPrimaryPrompt = `You are an expert data extraction assistant.
I have an email-like message with header, recipients, body, and possible references to people, entities, and locations.
Some people have emails; some do not.
The same person might appear fully in the recipients list and partially (e.g. "Mark") in the body.
Your job is to:
1) Deduplicate references when possible. If you see "Mark Duvall" in recipients and "Mark" in the body, output the full name from recipients in both.
2) Return valid JSON with these keys:
{
  "artifact": {
    "subject": "...",
    "sent_datetime": "...",
    "artifact_purpose": "..."
  },
  "sender": { "name": "...", "email": "...", "confidence": 1.0 },
  "recipients": [ { "name": "...", "email": "...", "confidence": 1.0 } ],
  "mentioned": [ { "name": "...", "email": null, "confidence": 0.9, "note": "..." } ],
  "entities": [ { "entity_type": "Brand|Event|Topic|...", "entity_value": "...", "context": "short snippet", "confidence": 1.0 } ],
  "locations": [ { "location_name": "...", "latitude": null, "longitude": null, "context": "short snippet", "confidence": 1.0, "note": "..." } ]
}
Only parse what appears in the text; do not hallucinate extra data.
The text is:
-----------
%s
-----------
Output only the JSON as specified, with no extra commentary.`

const DefaultSupplementarySystem = "You are an expert entity extraction assistant."

const DefaultSupplementaryPrompt = `You are an expert entity extraction assistant.
The following is the text of an email-like message. Some names, locations, and entities might not have been captured in a previous parse.
Please identify any additional references that appear to be:
- People (if a person's name is mentioned in the body, output the full name if available)
- Locations (place names or addresses)
- Entities (brands, events, topics, etc.)

Return valid JSON with these keys:
{
  "additional_people": [ { "name": "...", "email": null, "confidence": 0.9, "note": "..." } ],
  "additional_locations": [ { "location_name": "...", "latitude": null, "longitude": null, "context": "short snippet", "confidence": 0.9, "note": "..." } ],
  "additional_entities": [ { "entity_type": "Brand|Event|Topic|...", "entity_value": "...", "context": "short snippet", "confidence": 0.9 } ]
}
Only output the JSON.
The text is:
-----------
%s
-----------`

const DefaultSummarySystem = "You summarize correspondence for an archive catalogue."

const DefaultSummaryPrompt = `Summarize the following document in two or three sentences.
Mention who wrote it, to whom, and what it is about. Do not invent details.
Return valid JSON: {"summary": "..."}

Document:
-----------
%s
-----------`
