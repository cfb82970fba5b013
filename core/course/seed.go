package course

// seed is the known-good catalog installed by the reset endpoint.
var seed = []CourseNew{
	{
		Name:        "Intro to Go",
		Description: "From zero to your first running Go program: syntax, tooling and the standard library.",
		Instructor:  "Maya Krishnan",
		Price:       999,
		ImageURL:    "https://cdn.klasemy.dev/courses/intro-to-go.png",
		TrailerURL:  "https://cdn.klasemy.dev/trailers/intro-to-go.mp4",
	},
	{
		Name:        "Practical SQL",
		Description: "Design schemas, write useful queries and stop being afraid of joins.",
		Instructor:  "Daniel Okoye",
		Price:       1299,
		ImageURL:    "https://cdn.klasemy.dev/courses/practical-sql.png",
	},
	{
		Name:        "Building Web APIs",
		Description: "REST services end to end: routing, middleware, auth and deployment.",
		Instructor:  "Maya Krishnan",
		Price:       1499,
		ImageURL:    "https://cdn.klasemy.dev/courses/building-web-apis.png",
		TrailerURL:  "https://cdn.klasemy.dev/trailers/building-web-apis.mp4",
	},
	{
		Name:        "Docker for Developers",
		Description: "Containers, images and compose files explained with day-to-day examples.",
		Instructor:  "Sofia Marques",
		Price:       899,
		ImageURL:    "https://cdn.klasemy.dev/courses/docker-for-developers.png",
	},
	{
		Name:        "Git Essentials",
		Description: "Branching, rebasing and collaborating without losing work or sleep.",
		Instructor:  "Daniel Okoye",
		Price:       499,
		ImageURL:    "https://cdn.klasemy.dev/courses/git-essentials.png",
	},
}
