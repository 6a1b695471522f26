package orchestrator

// CallbackSample is the code shown in the callback panel
const CallbackSample = `req := orchestrator.NewRequest(client, loop)
req.Open(http.MethodGet, endpoint)
req.OnLoad = func() {
	// the body arrives as a string
	fmt.Println(req.Response)

	// once parsed it becomes an ordered payload
	payload, err := models.ParsePayload([]byte(req.Response))
	if err != nil {
		return
	}
	table.Render(payload)
}
req.Send()`

// PromiseSample is the code shown in the promise panel
const PromiseSample = `resp := orchestrator.Fetch(client, loop, endpoint)

payload := orchestrator.Chain(resp, func(r *orchestrator.Response) *orchestrator.Promise[models.Payload] {
	// the response is a value with metadata and an unread body
	fmt.Println(r.Describe())
	return r.JSON()
})

payload.Handle(func(p models.Payload) {
	table.Render(p)
}, nil)`
